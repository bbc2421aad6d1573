// Package mpris exposes the player on the D-Bus session bus as an MPRIS2
// media session.
package mpris

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
)

// Bus defines the D-Bus operations the sink needs.
// This abstraction allows us to mock D-Bus interactions in tests.
//
//go:generate mockgen -destination=mocks/bus_mock.go -package=mocks github.com/genricoloni/resonance/internal/mpris Bus,Properties
type Bus interface {
	// Export publishes the exported methods of v on path under iface
	Export(v interface{}, path dbus.ObjectPath, iface string) error

	// ExportProperties publishes org.freedesktop.DBus.Properties on path
	ExportProperties(path dbus.ObjectPath, spec map[string]map[string]*prop.Prop) (Properties, error)

	// RequestName claims a well-known bus name without queueing
	RequestName(name string) (dbus.RequestNameReply, error)

	// Emit sends a signal from path
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error

	// Close releases the connection and every name it owns
	Close() error
}

// Properties is the local side of an exported property table. SetMust
// bypasses the Writable flag and emits PropertiesChanged as configured.
type Properties interface {
	GetMust(iface, property string) interface{}
	SetMust(iface, property string, v interface{})
}

// SessionBus is the real implementation using godbus
type SessionBus struct {
	conn *dbus.Conn
}

// NewSessionBus opens a private connection to the session bus
func NewSessionBus() (*SessionBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus connection failed: %w", err)
	}
	return &SessionBus{conn: conn}, nil
}

// Export publishes the exported methods of v
func (b *SessionBus) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	return b.conn.Export(v, path, iface)
}

// ExportProperties publishes a property table
func (b *SessionBus) ExportProperties(path dbus.ObjectPath, spec map[string]map[string]*prop.Prop) (Properties, error) {
	props, err := prop.Export(b.conn, path, spec)
	if err != nil {
		return nil, err
	}
	return props, nil
}

// RequestName claims a well-known name
func (b *SessionBus) RequestName(name string) (dbus.RequestNameReply, error) {
	return b.conn.RequestName(name, dbus.NameFlagDoNotQueue)
}

// Emit sends a signal
func (b *SessionBus) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	return b.conn.Emit(path, name, values...)
}

// Close closes the D-Bus connection
func (b *SessionBus) Close() error {
	return b.conn.Close()
}
