package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/muzykantov/geo-data-pipeline/internal/services"
)

var (
	accessionPattern = regexp.MustCompile(`^GSE[0-9]+$`)
	seriesPattern    = regexp.MustCompile(`^GSE[0-9]*nnn$`)
)

// Ref identifies one GEO series archive. It is immutable for a pipeline
// invocation and is the only input used to derive storage paths.
type Ref struct {
	Name   string `validate:"required,geo_accession" json:"name" yaml:"name"`
	Series string `validate:"required,geo_series" json:"series" yaml:"series"`
}

// SeriesFor derives the GEO series bucket for an accession: the accession
// with its last three digits replaced by "nnn" (GSE68849 -> GSE68nnn,
// GSE123 -> GSEnnn).
func SeriesFor(name string) string {
	name = strings.TrimSpace(name)
	if !accessionPattern.MatchString(name) {
		return ""
	}
	digits := strings.TrimPrefix(name, "GSE")
	if len(digits) <= 3 {
		return "GSEnnn"
	}
	return "GSE" + digits[:len(digits)-3] + "nnn"
}

// String renders the ref as "name/series" for logs and the run journal.
func (r Ref) String() string {
	return r.Name + "/" + r.Series
}

// Validate checks the accession and series bucket formats. A series that
// differs from SeriesFor(Name) is allowed; see UnconventionalSeries.
func (r Ref) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return services.Wrap(services.ErrValidation, "dataset", "validate", "", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return services.Wrap(services.ErrValidation, "dataset", "validate", strings.Join(msgs, "; "), nil)
}

// UnconventionalSeries reports the bucket GEO would use for Name when Series
// names a different one. Mirrors with their own layout rely on this.
func (r Ref) UnconventionalSeries() (string, bool) {
	expected := SeriesFor(r.Name)
	if expected == "" || expected == r.Series {
		return "", false
	}
	return expected, true
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("geo_accession", func(fl validator.FieldLevel) bool {
		return accessionPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("geo_series", func(fl validator.FieldLevel) bool {
		return seriesPattern.MatchString(fl.Field().String())
	})
	return v
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "geo_accession":
		return fmt.Sprintf("%s %q is not a GEO series accession (GSE<digits>)", field, fe.Value())
	case "geo_series":
		return fmt.Sprintf("%s %q is not a GEO series bucket (GSE<digits>nnn)", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
