package ports

// WriteNotifier is told about every field the store assigns.
// A host binds it to its reactive layer so reads depending on the field are invalidated.
// Writes are reported in order once the writing routine has released the store lock,
// so implementations may read from the store.
//
//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type WriteNotifier interface {
	// FieldWritten reports an assignment to field of the entity (typename, id).
	// Nested plain values are reported with a dotted path, e.g. "profile.address".
	FieldWritten(typename, id, field string)
}
