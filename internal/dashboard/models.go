package dashboard

// RideRequestBody is the payload of POST /travels/request
type RideRequestBody struct {
	Date          string `json:"date"` // dd/mm/yy
	Time          string `json:"time"` // HH:MM
	From          string `json:"from"`
	To            string `json:"to"`
	Justification string `json:"justification"`
}

// RideResponse is returned by the dashboard for booked rides
type RideResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DefaultJustification is the reason sent with every booking
const DefaultJustification = "Turno"
