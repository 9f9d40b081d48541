package secstore

// Producer is a computed field resolved during read. A producer stored at a
// leaf is invoked with no arguments when the leaf is read.
type Producer interface {
	Produce() (any, error)
}

// FieldProducer additionally serves named fields, letting a producer act as
// a virtual sub-namespace: when read resolution reaches it mid-path, the
// pending field name is handed to ProduceField.
type FieldProducer interface {
	Producer
	ProduceField(field string) (any, error)
}

// ProducerFunc adapts a zero-argument function to Producer.
type ProducerFunc func() (any, error)

// Produce implements Producer.
func (f ProducerFunc) Produce() (any, error) {
	if f == nil {
		return nil, nil
	}
	return f()
}

// FieldProducerFunc adapts a one-argument function to FieldProducer. Leaf
// reads invoke it with an empty field name.
type FieldProducerFunc func(field string) (any, error)

// Produce implements Producer.
func (f FieldProducerFunc) Produce() (any, error) {
	if f == nil {
		return nil, nil
	}
	return f("")
}

// ProduceField implements FieldProducer.
func (f FieldProducerFunc) ProduceField(field string) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(field)
}

func isProducer(value any) bool {
	_, ok := value.(Producer)
	return ok
}

// invokeField dispatches a mid-path producer: FieldProducers receive the
// pending segment, plain producers are invoked with no arguments.
func invokeField(p Producer, field string) (any, error) {
	if fp, ok := p.(FieldProducer); ok {
		return fp.ProduceField(field)
	}
	return p.Produce()
}
