package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/username/commute-ride-bot/internal/schedule"
	"github.com/username/commute-ride-bot/pkg/dateutil"
)

// EnvPrefix prefixes every environment override, e.g. RIDEBOT_DASHBOARD_PASSWORD
const EnvPrefix = "RIDEBOT"

// Config represents application configuration
type Config struct {
	Shift        string                      `mapstructure:"shift" validate:"omitempty,oneof=day night 3d+3n"`
	StartDay     string                      `mapstructure:"start_day"`
	Days         int                         `mapstructure:"days"`
	Times        map[string]TimesConfig      `mapstructure:"times" validate:"dive,keys,oneof=day night,endkeys"`
	Addresses    map[string]string           `mapstructure:"addresses"`
	WeekSchedule map[string][]WeeklyOverride `mapstructure:"week_schedule" validate:"dive,keys,oneof=day night,endkeys,dive"`
	Rides        []RideOverride              `mapstructure:"rides" validate:"dive"`
	Dashboard    DashboardConfig             `mapstructure:"dashboard"`
	Log          LogConfig                   `mapstructure:"log"`
}

// TimesConfig holds the default commute times of one shift
type TimesConfig struct {
	TimeToWork string `mapstructure:"time_to_work" validate:"omitempty,hhmm"`
	TimeToHome string `mapstructure:"time_to_home" validate:"omitempty,hhmm"`
}

// WeeklyOverride replaces the pattern of some weekdays
type WeeklyOverride struct {
	Way      string `mapstructure:"way" validate:"required,oneof=to_work to_home"`
	Weekdays []int  `mapstructure:"weekdays" validate:"required,min=1,dive,gte=0,lte=6"`
	Home     string `mapstructure:"home"`
	Work     string `mapstructure:"work"`
	Time     string `mapstructure:"time" validate:"omitempty,hhmm"`
}

// RideOverride replaces a single ride
type RideOverride struct {
	Day  string `mapstructure:"day" validate:"required"`
	Way  string `mapstructure:"way" validate:"required,oneof=to_work to_home"`
	Home string `mapstructure:"home"`
	Work string `mapstructure:"work"`
	Time string `mapstructure:"time" validate:"omitempty,hhmm"`
}

// DashboardConfig represents the ride booking dashboard
type DashboardConfig struct {
	BaseURL       string `mapstructure:"base_url" validate:"omitempty,url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	Justification string `mapstructure:"justification"`
	Timeout       string `mapstructure:"timeout"`
	Retries       int    `mapstructure:"retries" validate:"gte=0,lte=10"`
	RetryDelay    string `mapstructure:"retry_delay"`
	Passes        int    `mapstructure:"passes" validate:"gte=1,lte=5"`
	DryRun        bool   `mapstructure:"dry_run"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("hhmm", validateHHMM)
}

func validateHHMM(fl validator.FieldLevel) bool {
	return schedule.ValidateTime(fl.Field().String()) == nil
}

// Load loads configuration from file. A .env file next to the config file
// is read first so credentials can stay out of the YAML.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.commute-ride-bot")
		v.AddConfigPath("/etc/commute-ride-bot")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("days", schedule.DefaultDays)
	v.SetDefault("dashboard.base_url", "")
	v.SetDefault("dashboard.username", "")
	v.SetDefault("dashboard.password", "")
	v.SetDefault("dashboard.justification", "")
	v.SetDefault("dashboard.timeout", "30s")
	v.SetDefault("dashboard.retries", 3)
	v.SetDefault("dashboard.retry_delay", "1s")
	v.SetDefault("dashboard.passes", 2)
	v.SetDefault("dashboard.dry_run", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

func loadDotEnv(configPath string) error {
	path := ".env"
	if configPath != "" {
		path = filepath.Join(filepath.Dir(configPath), ".env")
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration. Missing schedule fields are not an
// error here: they are reported by the checkup before anything is booked.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return errors.New(formatValidationErrors(verrs))
		}
		return err
	}

	if err := schedule.ValidateDays(c.Days); err != nil {
		return err
	}
	if c.StartDay != "" {
		if _, err := dateutil.ParseDate(c.StartDay, time.Now()); err != nil {
			return &schedule.InvalidDateError{Value: c.StartDay, Err: err}
		}
	}
	if c.Dashboard.GetTimeout() <= 0 {
		return fmt.Errorf("dashboard.timeout must be positive")
	}

	return nil
}

// ValidateDashboard checks the settings needed to book against the real dashboard
func (c *Config) ValidateDashboard() error {
	var missing []string
	if c.Dashboard.BaseURL == "" {
		missing = append(missing, "dashboard.base_url")
	}
	if c.Dashboard.Username == "" {
		missing = append(missing, "dashboard.username")
	}
	if c.Dashboard.Password == "" {
		missing = append(missing, "dashboard.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required to book rides (set them in the config or as %s_* variables)",
			strings.Join(missing, ", "), EnvPrefix)
	}
	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of %s, got '%v'",
				field, strings.Join(strings.Fields(fe.Param()), ", "), fe.Value()))
		case "hhmm":
			messages = append(messages, fmt.Sprintf("%s must be HH:MM, got '%v'", field, fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed '%s' check", field, fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}

// GetTimeout returns the per-request dashboard timeout
func (c *DashboardConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}

// GetRetryDelay returns the base delay between request attempts
func (c *DashboardConfig) GetRetryDelay() time.Duration {
	if c.RetryDelay == "" {
		return time.Second
	}
	duration, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return time.Second
	}
	return duration
}

// ToPlan converts the configuration into a schedule plan. Day-month dates
// without a year take the year of now.
func (c *Config) ToPlan(now time.Time) (schedule.Plan, error) {
	rotation, err := schedule.ParseRotation(c.Shift)
	if err != nil {
		return schedule.Plan{}, err
	}

	plan := schedule.Plan{
		Rotation:  rotation,
		Days:      c.Days,
		Times:     make(map[schedule.Shift]schedule.ShiftTimes),
		Addresses: c.Addresses,
		Weekly:    make(map[schedule.Shift][]schedule.WeeklyOverride),
	}

	if c.StartDay != "" {
		start, err := dateutil.ParseDate(c.StartDay, now)
		if err != nil {
			return schedule.Plan{}, &schedule.InvalidDateError{Value: c.StartDay, Err: err}
		}
		plan.StartDay = start
	}

	for name, times := range c.Times {
		shift, err := schedule.ParseShift(name)
		if err != nil {
			return schedule.Plan{}, err
		}
		plan.Times[shift] = schedule.ShiftTimes{
			TimeToWork: times.TimeToWork,
			TimeToHome: times.TimeToHome,
		}
	}

	for name, overrides := range c.WeekSchedule {
		shift, err := schedule.ParseShift(name)
		if err != nil {
			return schedule.Plan{}, err
		}
		for _, o := range overrides {
			dir, err := schedule.ParseDirection(o.Way)
			if err != nil {
				return schedule.Plan{}, err
			}
			plan.Weekly[shift] = append(plan.Weekly[shift], schedule.WeeklyOverride{
				Direction: dir,
				Weekdays:  o.Weekdays,
				Home:      o.Home,
				Work:      o.Work,
				Time:      o.Time,
			})
		}
	}

	for _, r := range c.Rides {
		day, err := dateutil.ParseDate(r.Day, now)
		if err != nil {
			return schedule.Plan{}, &schedule.InvalidDateError{Value: r.Day, Err: err}
		}
		dir, err := schedule.ParseDirection(r.Way)
		if err != nil {
			return schedule.Plan{}, err
		}
		plan.Rides = append(plan.Rides, schedule.RideOverride{
			Date:      day,
			Direction: dir,
			Home:      r.Home,
			Work:      r.Work,
			Time:      r.Time,
		})
	}

	return plan, nil
}
