package normalize

// Canonical column names, in output order.
const (
	ColRegion    = "Region/Country/Area"
	ColYear      = "Year"
	ColCategory  = "Threatened species"
	ColValue     = "Value"
	ColSource    = "Source"
	ColFootnotes = "Footnotes"
)

// CanonicalHeader is the header of every cleaned artifact.
var CanonicalHeader = []string{ColRegion, ColYear, ColCategory, ColValue, ColSource, ColFootnotes}

// noiseColumns are header names dropped before the canonical header is built.
var noiseColumns = map[string]bool{"T25": true, "Series": true}

// Record is one cleaned row. Footnote may be empty but is always emitted.
type Record struct {
	Region   string `json:"region"`
	Year     string `json:"year"`
	Category string `json:"species_category_raw"`
	Value    string `json:"value"`
	Source   string `json:"source"`
	Footnote string `json:"footnote"`
}

// Fields returns the record in canonical column order.
func (r Record) Fields() []string {
	return []string{r.Region, r.Year, r.Category, r.Value, r.Source, r.Footnote}
}

// recordFrom builds a record from fields already in positional order.
// The caller guarantees len(f) >= 5.
func recordFrom(f []string) Record {
	r := Record{Region: f[0], Year: f[1], Category: f[2], Value: f[3], Source: f[4]}
	if len(f) > 5 {
		r.Footnote = f[5]
	}
	return r
}

// swapSourceFootnote restores Source/Footnotes order for inputs that emit
// Footnotes first.
func (r *Record) swapSourceFootnote() {
	r.Source, r.Footnote = r.Footnote, r.Source
}
