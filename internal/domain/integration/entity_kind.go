package integration

// EntityKind tags the kind of remote entity a payload describes
type EntityKind string

const (
	EntityKindCustomer EntityKind = "customer"
	EntityKindProduct  EntityKind = "product"
	EntityKindOrder    EntityKind = "order"
)

// AllEntityKinds lists every supported kind
var AllEntityKinds = []EntityKind{EntityKindCustomer, EntityKindProduct, EntityKindOrder}

// IsValid returns true if the kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindCustomer, EntityKindProduct, EntityKindOrder:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// QueueSequenceCode returns the sequence used to name queues of this kind
func (k EntityKind) QueueSequenceCode() string {
	switch k {
	case EntityKindCustomer:
		return "CUST-Q"
	case EntityKindProduct:
		return "PROD-Q"
	case EntityKindOrder:
		return "ORD-Q"
	default:
		return "Q"
	}
}

// SingularKey is the envelope key of a single-object response, e.g. "customer"
func (k EntityKind) SingularKey() string {
	return string(k)
}

// PluralKey is the envelope key of a list response and the REST resource name
func (k EntityKind) PluralKey() string {
	return string(k) + "s"
}

// Operation is what an inbound event asks for
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// IsValid returns true if the operation is valid
func (o Operation) IsValid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// String returns the string representation of Operation
func (o Operation) String() string {
	return string(o)
}
