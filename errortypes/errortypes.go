package errortypes

// BadInput should be used when returning errors which are caused by bad input,
// such as a malformed bundle file name or an unsupported kind/type combination.
// It should _not_ be used if the error is a server-side issue.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}

func (err *BadInput) Severity() Severity {
	return SeverityFatal
}

// AssetResolution flags that an individual asset's source was missing or its
// location was invalid. These never abort a bundle; the asset is rendered as an
// inline comment in debug output and excluded in production output.
type AssetResolution struct {
	Message string
}

func (err *AssetResolution) Error() string {
	return err.Message
}

func (err *AssetResolution) Code() int {
	return AssetResolutionErrorCode
}

func (err *AssetResolution) Severity() Severity {
	return SeverityWarning
}

// MergeTypeMismatch flags that a default definition and a component instance
// disagreed on shape at some tree node. The subtree's merge step is skipped and
// the rest of the tree continues.
type MergeTypeMismatch struct {
	Message string
}

func (err *MergeTypeMismatch) Error() string {
	return err.Message
}

func (err *MergeTypeMismatch) Code() int {
	return MergeTypeMismatchErrorCode
}

func (err *MergeTypeMismatch) Severity() Severity {
	return SeverityWarning
}

// Minification flags that the minifier reported errors or failed outright. The
// original unminified text is substituted and the request still succeeds.
type Minification struct {
	Message string
}

func (err *Minification) Error() string {
	return err.Message
}

func (err *Minification) Code() int {
	return MinificationErrorCode
}

func (err *Minification) Severity() Severity {
	return SeverityWarning
}

// TemplateMissing should be used when a required code-generation template file
// is absent. There is no safe fallback content, so this is terminal.
type TemplateMissing struct {
	Message string
}

func (err *TemplateMissing) Error() string {
	return err.Message
}

func (err *TemplateMissing) Code() int {
	return TemplateMissingErrorCode
}

func (err *TemplateMissing) Severity() Severity {
	return SeverityFatal
}
