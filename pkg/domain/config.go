package domain

// Typed node configurations. Field tags preserve the wire names used by the
// external flow-authoring tool, which mixes Spanish and English.

// ValidationRule configures input validation for a collect node.
type ValidationRule struct {
	// Type is one of texto, numero, email, telefono, fecha, regex
	// (English aliases text, number, phone, date are accepted).
	Type         string `mapstructure:"tipo"`
	Pattern      string `mapstructure:"regex"`
	ErrorMessage string `mapstructure:"mensajeError"`
}

// CollectConfig configures a conversational_collect node.
type CollectConfig struct {
	Question   string          `mapstructure:"pregunta"`
	Variable   string          `mapstructure:"variable"`
	Options    []string        `mapstructure:"opciones"`
	Validation *ValidationRule `mapstructure:"validacion"`
}

// ListFormat expands a list variable through a per-item template before the
// message is interpolated. {{index}} is 1-based; item fields substitute by
// name.
type ListFormat struct {
	Variable string `mapstructure:"variable"`
	Template string `mapstructure:"template"`
}

// ResponseConfig configures a conversational_response node.
type ResponseConfig struct {
	Message       string      `mapstructure:"mensaje"`
	AwaitReply    bool        `mapstructure:"esperarRespuesta"`
	ReplyVariable string      `mapstructure:"siguienteVariable"`
	FormatList    *ListFormat `mapstructure:"formatearLista"`
}

// FilterConfig configures a filter node.
type FilterConfig struct {
	Conditions []Condition `mapstructure:"conditions"`
	Logic      string      `mapstructure:"logic"`
}

// APICallConfig configures an api_call node. Params and Body are
// interpolated against the session variables before dispatch.
type APICallConfig struct {
	EndpointID     string         `mapstructure:"endpointId"`
	Params         map[string]any `mapstructure:"params"`
	Body           map[string]any `mapstructure:"body"`
	OutputVariable string         `mapstructure:"outputVariable"`
	ArrayPath      string         `mapstructure:"arrayPath"`
}

// TransformConfig configures a gpt_transform node.
type TransformConfig struct {
	Prompt         string `mapstructure:"prompt"`
	Model          string `mapstructure:"modelo"`
	OutputVariable string `mapstructure:"outputVariable"`
	ParseJSON      bool   `mapstructure:"parseJSON"`
}

// PaymentConfig configures a mercadopago_payment node. Amount may be a
// number, a numeric string, or a restricted arithmetic expression such as
// "{{precio}} * {{cantidad}}".
type PaymentConfig struct {
	Title          string `mapstructure:"title"`
	Amount         any    `mapstructure:"amount"`
	Description    string `mapstructure:"description"`
	OutputVariable string `mapstructure:"outputVariable"`
}
