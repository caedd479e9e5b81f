//go:build !js_eval

package nav

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return false
}
