// Package form holds the typed view state of the upload form and the
// request builder that turns a snapshot of it into a multipart payload.
package form

import (
	"errors"
	"io"
)

// Element identifiers shared between the view and the submitter.
const (
	FormID         = "uploadForm"
	ImagesID       = "images"
	LogoID         = "logo"
	OptionsName    = "options"
	OutputFormatID = "output_format"
	StatusID       = "status"
	ResultsID      = "results"
	PositionID     = "position"
	OpacityID      = "opacity"
	ScaleID        = "scale"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrNoOutputFormat  = errors.New("no output format selected")
)

// File is one selected file of a file input.
type File struct {
	Name   string
	Reader io.Reader
}

// Sliders carries the four adjustment percentages.
type Sliders struct {
	Brightness int
	Contrast   int
	Sharpen    int
	Temp       int
}

// State is a snapshot of the form taken at submit time.
type State struct {
	Images       []File
	Logo         *File
	Options      []string
	OutputFormat string
	Sliders      Sliders
	Position     string
	Opacity      string
	Scale        string
}
