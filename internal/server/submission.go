package server

import (
	"net/url"
	"sort"
)

// fieldArity tells the decoder how many values a form field carries.
type fieldArity int

const (
	arityScalar fieldArity = iota
	arityRepeated
	arityFile
)

// formSchema lists every field the form posts. Anything else is ignored.
var formSchema = map[string]fieldArity{
	"first_name": arityScalar,
	"last_name":  arityScalar,
	"email":      arityScalar,
	"phone":      arityScalar,
	"birthdate":  arityScalar,
	"address":    arityScalar,
	"university": arityScalar,
	"edu_start":  arityScalar,
	"edu_end":    arityScalar,
	"major":      arityScalar,
	"bio":        arityScalar,
	"linkedin":   arityScalar,
	"github":     arityScalar,
	"portfolio":  arityScalar,

	fieldCompany:  arityRepeated,
	fieldPosition: arityRepeated,
	fieldYears:    arityRepeated,

	fieldResume: arityFile,
}

const (
	fieldCompany  = "company[]"
	fieldPosition = "position[]"
	fieldYears    = "years[]"
	fieldResume   = "resume"
)

// ResumeInfo describes an uploaded resume. The file contents are not kept.
type ResumeInfo struct {
	Filename    string
	Size        int64
	ContentType string // as declared by the client
	Sniffed     string // detected from the leading bytes
}

// SubmittedForm is one decoded POST. Repeated fields keep submission order
// and are never nil. Resume is nil when no file was chosen.
type SubmittedForm struct {
	Scalars   map[string]string
	Companies []string
	Positions []string
	Years     []string
	Resume    *ResumeInfo

	// Unknown holds names of posted fields outside the schema, sorted.
	Unknown []string
}

// decodeFields fills the scalar and repeated parts of a submission from
// parsed form values. A scalar sent more than once keeps its first value.
func decodeFields(values url.Values) *SubmittedForm {
	sub := &SubmittedForm{
		Scalars:   make(map[string]string),
		Companies: copyValues(values[fieldCompany]),
		Positions: copyValues(values[fieldPosition]),
		Years:     copyValues(values[fieldYears]),
	}

	for name, vals := range values {
		arity, known := formSchema[name]
		if !known {
			sub.Unknown = append(sub.Unknown, name)
			continue
		}
		if arity == arityScalar && len(vals) > 0 {
			sub.Scalars[name] = vals[0]
		}
	}
	sort.Strings(sub.Unknown)
	return sub
}

func copyValues(vals []string) []string {
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// logFields flattens the submission for the structured log record.
func (s *SubmittedForm) logFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(s.Scalars)+6)
	for k, v := range s.Scalars {
		fields[k] = v
	}
	fields["companies"] = s.Companies
	fields["positions"] = s.Positions
	fields["years"] = s.Years
	if s.Resume != nil {
		fields["resume_filename"] = s.Resume.Filename
		fields["resume_size"] = s.Resume.Size
		fields["resume_content_type"] = s.Resume.ContentType
		fields["resume_sniffed_type"] = s.Resume.Sniffed
	} else {
		fields["resume_filename"] = nil
	}
	return fields
}
