package secstore

import "fmt"

// FieldDescriptor describes one addressable field: its path, the inferred
// value type, and the effective single-segment permission on its owning
// node.
type FieldDescriptor struct {
	Path       string
	Type       string
	Permission Permission
}

// Describe flattens the store into field descriptors, walking nested stores
// and plain objects in field order. Producers are reported as "producer"
// without being invoked. Descriptors are an introspection surface: fields
// are listed regardless of their permission.
func Describe(s *Store) []FieldDescriptor {
	if s == nil {
		return []FieldDescriptor{}
	}
	descriptors := describeStore(s, "")
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return descriptors
}

func describeStore(s *Store, prefix string) []FieldDescriptor {
	var fields []FieldDescriptor
	for _, name := range s.Fields() {
		value, ok := s.get(name)
		if !ok {
			continue
		}
		path := joinPrefixed(prefix, name)
		perm := s.permissionAt(name)
		switch typed := value.(type) {
		case *Store:
			if typed.Len() == 0 {
				fields = append(fields, FieldDescriptor{Path: path, Type: "store", Permission: perm})
				continue
			}
			fields = append(fields, describeStore(typed, path)...)
		case map[string]any:
			fields = append(fields, FieldDescriptor{Path: path, Type: "map[string]any", Permission: perm})
		case []any:
			elementType := "any"
			if len(typed) > 0 {
				elementType = typeName(typed[0])
			}
			fields = append(fields, FieldDescriptor{Path: path, Type: "[]" + elementType, Permission: perm})
		default:
			if isProducer(value) {
				fields = append(fields, FieldDescriptor{Path: path, Type: "producer", Permission: perm})
				continue
			}
			fields = append(fields, FieldDescriptor{Path: path, Type: typeName(value), Permission: perm})
		}
	}
	return fields
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPrefixed(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return JoinPath(prefix, segment)
}
