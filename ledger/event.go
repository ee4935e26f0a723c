package ledger

// Event represents an application event emitted during action execution or
// block processing. Events are appended to the current block's event log and
// consumed by the block-assembly and indexing subsystems.
type Event struct {
	// Type is the event type identifier (e.g. "tx.deposit", "tx.fees").
	Type string

	// Attributes are the key-value pairs associated with this event.
	Attributes []Attribute
}

// NewEvent creates a new event with the given type.
func NewEvent(eventType string) Event {
	return Event{Type: eventType}
}

// AddAttribute adds an attribute to the event and returns the event for chaining.
func (e Event) AddAttribute(key string, value []byte) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value})
	return e
}

// AddStringAttribute adds a string attribute to the event.
func (e Event) AddStringAttribute(key, value string) Event {
	return e.AddAttribute(key, []byte(value))
}

// AddIndexedAttribute adds an indexed attribute to the event.
func (e Event) AddIndexedAttribute(key string, value []byte) Event {
	e.Attributes = append(e.Attributes, Attribute{Key: key, Value: value, Index: true})
	return e
}

// Attribute represents a key-value pair within an event.
type Attribute struct {
	// Key is the attribute name.
	Key string

	// Value is the attribute value.
	Value []byte

	// Index indicates whether this attribute should be indexed for queries.
	Index bool
}

// StringValue returns the attribute value as a string.
func (a Attribute) StringValue() string {
	return string(a.Value)
}
