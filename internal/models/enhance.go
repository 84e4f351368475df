package models

// Enhancement options accepted under the "options" form field.
const (
	OptionDenoise     = "denoise"
	OptionBrightness  = "brightness"
	OptionContrast    = "contrast"
	OptionSharpen     = "sharpen"
	OptionTemperature = "temperature"
)

// Logo positions accepted under the "position" form field.
const (
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
	PositionCenter      = "center"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatJPG  = "jpg"
	FormatWebP = "webp"
)

// Defaults applied when a form field is missing.
const (
	DefaultBrightness  = 25
	DefaultContrast    = 25
	DefaultSharpen     = 25
	DefaultTemperature = 50
	DefaultOpacity     = 0.8
	DefaultScale       = 0.25
	DefaultPosition    = PositionTopRight
	DefaultFormat      = FormatPNG
)

// EnhanceRequest is the parsed form of a POST /process submission.
type EnhanceRequest struct {
	Options      map[string]bool `json:"options"`
	OutputFormat string          `json:"output_format"`
	Brightness   int             `json:"brightness_val"`
	Contrast     int             `json:"contrast_val"`
	Sharpen      int             `json:"sharpen_val"`
	Temperature  int             `json:"temp_val"`
	Position     string          `json:"position"`
	Opacity      float64         `json:"opacity"`
	Scale        float64         `json:"scale"`
}

// Has reports whether the named option was checked.
func (r *EnhanceRequest) Has(option string) bool {
	return r.Options[option]
}

// NewEnhanceRequest returns a request carrying the server-side defaults.
func NewEnhanceRequest() *EnhanceRequest {
	return &EnhanceRequest{
		Options:      map[string]bool{},
		OutputFormat: DefaultFormat,
		Brightness:   DefaultBrightness,
		Contrast:     DefaultContrast,
		Sharpen:      DefaultSharpen,
		Temperature:  DefaultTemperature,
		Position:     DefaultPosition,
		Opacity:      DefaultOpacity,
		Scale:        DefaultScale,
	}
}
