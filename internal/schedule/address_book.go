package schedule

import (
	"sort"
	"strings"
)

// Reserved address names, always present in an AddressBook
const (
	HomeAddress = "home"
	WorkAddress = "work"
)

// AddressBook maps address nicknames to full addresses as the dashboard shows them
type AddressBook struct {
	addresses map[string]string
}

// NewAddressBook creates a book holding the reserved names with empty addresses
func NewAddressBook() *AddressBook {
	return &AddressBook{
		addresses: map[string]string{
			HomeAddress: "",
			WorkAddress: "",
		},
	}
}

// Set adds or overwrites an address
func (b *AddressBook) Set(name, address string) error {
	if strings.TrimSpace(address) == "" {
		return &EmptyAddressError{Name: name}
	}
	b.addresses[name] = address
	return nil
}

// SetMany adds every non-blank entry. Blank values are skipped so that an
// unset home or work is left for Checkup to report.
func (b *AddressBook) SetMany(addresses map[string]string) error {
	for _, name := range sortedKeys(addresses) {
		if strings.TrimSpace(addresses[name]) == "" {
			continue
		}
		if err := b.Set(name, addresses[name]); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes an address. Reserved names are cleared instead of deleted.
func (b *AddressBook) Remove(name string) {
	if _, ok := b.addresses[name]; !ok {
		return
	}
	if isReserved(name) {
		b.addresses[name] = ""
		return
	}
	delete(b.addresses, name)
}

// All returns a copy of the registered addresses
func (b *AddressBook) All() map[string]string {
	out := make(map[string]string, len(b.addresses))
	for name, address := range b.addresses {
		out[name] = address
	}
	return out
}

// Names returns the registered names in alphabetical order
func (b *AddressBook) Names() []string {
	return sortedKeys(b.addresses)
}

// Resolve returns the address registered under name
func (b *AddressBook) Resolve(name string) (string, error) {
	address, ok := b.addresses[name]
	if !ok {
		return "", &UnknownAddressError{Name: name}
	}
	return address, nil
}

func isReserved(name string) bool {
	return name == HomeAddress || name == WorkAddress
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
