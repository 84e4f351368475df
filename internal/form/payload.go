package form

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
)

// Multipart field names of the POST /process contract.
const (
	FieldImages       = "images"
	FieldLogo         = "logo"
	FieldOptions      = "options"
	FieldOutputFormat = "output_format"
	FieldBrightness   = "brightness_val"
	FieldContrast     = "contrast_val"
	FieldSharpen      = "sharpen_val"
	FieldTemp         = "temp_val"
	FieldPosition     = "position"
	FieldOpacity      = "opacity"
	FieldScale        = "scale"
)

// Payload is a multipart request body ready to be posted.
type Payload struct {
	Body        *bytes.Buffer
	ContentType string
}

// BuildPayload encodes a form snapshot as multipart/form-data.
func BuildPayload(state State) (*Payload, error) {
	if state.OutputFormat == "" {
		return nil, ErrNoOutputFormat
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, img := range state.Images {
		if err := writeFile(w, FieldImages, img); err != nil {
			return nil, err
		}
	}

	if state.Logo != nil {
		if err := writeFile(w, FieldLogo, *state.Logo); err != nil {
			return nil, err
		}
	}

	fields := make([][2]string, 0, len(state.Options)+8)
	for _, opt := range state.Options {
		fields = append(fields, [2]string{FieldOptions, opt})
	}
	fields = append(fields,
		[2]string{FieldOutputFormat, state.OutputFormat},
		[2]string{FieldBrightness, strconv.Itoa(state.Sliders.Brightness)},
		[2]string{FieldContrast, strconv.Itoa(state.Sliders.Contrast)},
		[2]string{FieldSharpen, strconv.Itoa(state.Sliders.Sharpen)},
		[2]string{FieldTemp, strconv.Itoa(state.Sliders.Temp)},
		[2]string{FieldPosition, state.Position},
		[2]string{FieldOpacity, state.Opacity},
		[2]string{FieldScale, state.Scale},
	)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &Payload{Body: body, ContentType: w.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field string, f File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", contentTypeFor(f.Name))

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", f.Name, err)
	}

	if f.Reader == nil {
		return nil
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return fmt.Errorf("failed to copy %s: %w", f.Name, err)
	}
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
