package menu

// Service describes a named external function invoked from a Function
// screen. The handler is resolved by FunctionName against the function
// registry at execution time; the result lands in session data under
// DataKey.
type Service struct {
	FunctionName string `json:"function_name"`
	FunctionURL  string `json:"function_url,omitempty"`
	DataKey      string `json:"data_key"`
	ServiceCode  string `json:"service_code,omitempty"`
}
