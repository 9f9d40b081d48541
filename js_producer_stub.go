//go:build !js_eval

package secstore

// NewJSProducer is unavailable without the js_eval build tag.
func NewJSProducer(expression string, opts ...JSProducerOption) FieldProducer {
	_ = applyJSProducerOptions(opts)
	return nil
}

func jsProducerAvailable() bool {
	return false
}
