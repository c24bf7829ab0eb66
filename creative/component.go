package creative

// Kind names a component variant. The set is closed; the merge and discovery
// walks dispatch on it instead of inspecting runtime types.
type Kind string

const (
	KindSlideLayout     Kind = "SlideLayout"
	KindBoxLayout       Kind = "BoxLayout"
	KindCardWidget      Kind = "CardWidget"
	KindTextWidget      Kind = "TextWidget"
	KindImageWidget     Kind = "ImageWidget"
	KindVideoWidget     Kind = "VideoWidget"
	KindCountdownWidget Kind = "CountdownWidget"
)

// IsLayout reports whether the kind owns child containers.
func (k Kind) IsLayout() bool {
	return k == KindSlideLayout || k == KindBoxLayout
}

// Component is the closed union over the seven known variants. Layout variants
// return their child containers from Contents; widgets return nil.
type Component interface {
	Kind() Kind
	Common() *Base
	Contents() []*ElementContainer
}

// NewOfKind allocates an empty component of the given kind, or nil for an
// unknown kind. The defaults loader uses it to deserialize per-type default
// definitions into the matching variant.
func NewOfKind(k Kind) Component {
	switch k {
	case KindSlideLayout:
		return &SlideLayout{}
	case KindBoxLayout:
		return &BoxLayout{}
	case KindCardWidget:
		return &CardWidget{}
	case KindTextWidget:
		return &TextWidget{}
	case KindImageWidget:
		return &ImageWidget{}
	case KindVideoWidget:
		return &VideoWidget{}
	case KindCountdownWidget:
		return &CountdownWidget{}
	}
	return nil
}

// Kinds lists every known component kind in a fixed order.
func Kinds() []Kind {
	return []Kind{
		KindSlideLayout,
		KindBoxLayout,
		KindCardWidget,
		KindTextWidget,
		KindImageWidget,
		KindVideoWidget,
		KindCountdownWidget,
	}
}

// Base carries the attributes shared by every component variant. Identifiers
// should be unique within a creative but uniqueness is not enforced.
type Base struct {
	ID         string            `json:"id,omitempty"`
	Class      string            `json:"class,omitempty"`
	Styles     map[string]string `json:"styles,omitempty"`
	Status     *bool             `json:"status,omitempty"`
	Attributes []string          `json:"attributes,omitempty"`
}

func (b *Base) Common() *Base {
	return b
}

func (b *Base) Contents() []*ElementContainer {
	return nil
}

// ElementContainer holds at most one populated widget-or-layout field. Exactly
// one should be non-nil; this is a soft invariant and is not enforced.
type ElementContainer struct {
	SlideLayout     *SlideLayout     `json:"slideLayout,omitempty"`
	BoxLayout       *BoxLayout       `json:"boxLayout,omitempty"`
	CardWidget      *CardWidget      `json:"cardWidget,omitempty"`
	TextWidget      *TextWidget      `json:"textWidget,omitempty"`
	ImageWidget     *ImageWidget     `json:"imageWidget,omitempty"`
	VideoWidget     *VideoWidget     `json:"videoWidget,omitempty"`
	CountdownWidget *CountdownWidget `json:"countdownWidget,omitempty"`
}

// Component returns the first populated field, or nil for an empty container.
func (c *ElementContainer) Component() Component {
	switch {
	case c == nil:
		return nil
	case c.SlideLayout != nil:
		return c.SlideLayout
	case c.BoxLayout != nil:
		return c.BoxLayout
	case c.CardWidget != nil:
		return c.CardWidget
	case c.TextWidget != nil:
		return c.TextWidget
	case c.ImageWidget != nil:
		return c.ImageWidget
	case c.VideoWidget != nil:
		return c.VideoWidget
	case c.CountdownWidget != nil:
		return c.CountdownWidget
	}
	return nil
}

// SlideLayout is the top-level layout variant referenced by pieces.
type SlideLayout struct {
	Base
	Items []*ElementContainer `json:"contents,omitempty"`
}

func (s *SlideLayout) Kind() Kind {
	return KindSlideLayout
}

func (s *SlideLayout) Contents() []*ElementContainer {
	return s.Items
}

// BoxLayout groups nested containers inside a slide.
type BoxLayout struct {
	Base
	Items []*ElementContainer `json:"contents,omitempty"`
}

func (b *BoxLayout) Kind() Kind {
	return KindBoxLayout
}

func (b *BoxLayout) Contents() []*ElementContainer {
	return b.Items
}

type CardWidget struct {
	Base
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
	Source  string `json:"source,omitempty"`
	Link    string `json:"link,omitempty"`
}

func (c *CardWidget) Kind() Kind {
	return KindCardWidget
}

type TextWidget struct {
	Base
	Text string `json:"text,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

func (t *TextWidget) Kind() Kind {
	return KindTextWidget
}

type ImageWidget struct {
	Base
	Source string `json:"source,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

func (i *ImageWidget) Kind() Kind {
	return KindImageWidget
}

type VideoWidget struct {
	Base
	Source string `json:"source,omitempty"`
	Poster string `json:"poster,omitempty"`
	Muted  *bool  `json:"muted,omitempty"`
	Loop   *bool  `json:"loop,omitempty"`
}

func (v *VideoWidget) Kind() Kind {
	return KindVideoWidget
}

// TargetDateTime describes where a countdown's target instant comes from: a
// literal value baked into the creative, or a query parameter read at render
// time.
type TargetDateTime struct {
	Source string `json:"source,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}

const (
	TargetSourceLiteral = "literal"
	TargetSourceQuery   = "query"
)

// Outcome describes what happens when a countdown completes.
type Outcome struct {
	Action string `json:"action,omitempty"`
	Type   string `json:"type,omitempty"`
	ID     string `json:"id,omitempty"`
}

type CountdownWidget struct {
	Base
	Target  *TargetDateTime `json:"target,omitempty"`
	Outcome *Outcome        `json:"outcome,omitempty"`
}

func (c *CountdownWidget) Kind() Kind {
	return KindCountdownWidget
}
