package form

import (
	"fmt"
	"strconv"
	"sync"
)

// SliderNames lists the sliders whose labels are kept in sync.
var SliderNames = []string{"brightness", "contrast", "sharpen", "temp"}

func SliderID(name string) string { return name + "_val" }

func LabelID(name string) string { return name + "_label" }

// LabelText is the label shown for a slider value.
func LabelText(value string) string {
	return value + "%"
}

// Control is an input element that fires input events.
type Control interface {
	Value() string
	OnInput(fn func())
}

// TextNode is an element whose text content can be replaced.
type TextNode interface {
	SetText(text string)
}

// Document locates elements by identifier.
type Document interface {
	Control(id string) (Control, bool)
	Text(id string) (TextNode, bool)
}

// BindSliderLabels mirrors every slider value into its paired label on each
// input event.
func BindSliderLabels(doc Document) error {
	for _, name := range SliderNames {
		slider, ok := doc.Control(SliderID(name))
		if !ok {
			return fmt.Errorf("%w: %s", ErrElementNotFound, SliderID(name))
		}
		label, ok := doc.Text(LabelID(name))
		if !ok {
			return fmt.Errorf("%w: %s", ErrElementNotFound, LabelID(name))
		}

		slider.OnInput(func() {
			label.SetText(LabelText(slider.Value()))
		})
	}
	return nil
}

// Slider is an in-memory range control.
type Slider struct {
	mu        sync.Mutex
	value     string
	listeners []func()
}

func NewSlider(value int) *Slider {
	return &Slider{value: strconv.Itoa(value)}
}

func (s *Slider) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Slider) OnInput(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Set changes the value and dispatches an input event.
func (s *Slider) Set(value int) {
	s.mu.Lock()
	s.value = strconv.Itoa(value)
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Label is an in-memory text element.
type Label struct {
	mu   sync.Mutex
	text string
}

func (l *Label) SetText(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.text = text
}

func (l *Label) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// Panel is a Document holding one slider and label per adjustment.
type Panel struct {
	sliders map[string]*Slider
	labels  map[string]*Label
}

func NewPanel(initial Sliders) *Panel {
	values := map[string]int{
		"brightness": initial.Brightness,
		"contrast":   initial.Contrast,
		"sharpen":    initial.Sharpen,
		"temp":       initial.Temp,
	}

	p := &Panel{
		sliders: make(map[string]*Slider, len(SliderNames)),
		labels:  make(map[string]*Label, len(SliderNames)),
	}
	for _, name := range SliderNames {
		p.sliders[SliderID(name)] = NewSlider(values[name])
		p.labels[LabelID(name)] = &Label{text: LabelText(strconv.Itoa(values[name]))}
	}
	return p
}

func (p *Panel) Control(id string) (Control, bool) {
	s, ok := p.sliders[id]
	return s, ok
}

func (p *Panel) Text(id string) (TextNode, bool) {
	l, ok := p.labels[id]
	return l, ok
}

// Slider returns the named slider, or nil.
func (p *Panel) Slider(name string) *Slider {
	return p.sliders[SliderID(name)]
}

// LabelFor returns the current label text of the named slider.
func (p *Panel) LabelFor(name string) string {
	if l, ok := p.labels[LabelID(name)]; ok {
		return l.Text()
	}
	return ""
}

// Snapshot reads the current slider values.
func (p *Panel) Snapshot() (Sliders, error) {
	read := func(name string) (int, error) {
		s := p.Slider(name)
		if s == nil {
			return 0, fmt.Errorf("%w: %s", ErrElementNotFound, SliderID(name))
		}
		v, err := strconv.Atoi(s.Value())
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %w", name, err)
		}
		return v, nil
	}

	var out Sliders
	var err error
	if out.Brightness, err = read("brightness"); err != nil {
		return Sliders{}, err
	}
	if out.Contrast, err = read("contrast"); err != nil {
		return Sliders{}, err
	}
	if out.Sharpen, err = read("sharpen"); err != nil {
		return Sliders{}, err
	}
	if out.Temp, err = read("temp"); err != nil {
		return Sliders{}, err
	}
	return out, nil
}
