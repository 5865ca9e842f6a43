package series

import (
	"log/slog"
	"sort"
	"strconv"

	"github.com/KaramelBytes/threatcast/internal/normalize"
)

// Point is one observation in a time series.
type Point struct {
	Year  int   `json:"year"`
	Value int64 `json:"value"`
}

// Key identifies a single series.
type Key struct {
	Country  string
	Category Category
}

func (k Key) String() string { return k.Country + " / " + k.Category.String() }

// Set holds every series built from a record stream. Points keep insertion
// order and duplicates are retained. A Set is not safe for concurrent writers.
type Set struct {
	data map[string]map[Category][]Point
	// Excluded counts records with an unrecognized category descriptor.
	Excluded int
	// Rejected counts records whose year or value is not an integer.
	Rejected int

	logger *slog.Logger
}

// NewSet returns an empty Set.
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{data: map[string]map[Category][]Point{}, logger: logger}
}

// Aggregate buckets records by (region, category).
func Aggregate(recs []normalize.Record, logger *slog.Logger) *Set {
	s := NewSet(logger)
	for _, r := range recs {
		s.Add(r)
	}
	return s
}

// Add appends the record to its series and reports whether it was bucketed.
func (s *Set) Add(r normalize.Record) bool {
	cat, ok := FromDescriptor(r.Category)
	if !ok {
		s.Excluded++
		return false
	}
	year, err := strconv.Atoi(r.Year)
	if err != nil {
		s.reject(r, "year", err)
		return false
	}
	val, err := strconv.ParseInt(r.Value, 10, 64)
	if err != nil {
		s.reject(r, "value", err)
		return false
	}
	s.append(r.Region, cat, Point{Year: year, Value: val})
	return true
}

func (s *Set) append(country string, cat Category, pts ...Point) {
	byCat := s.data[country]
	if byCat == nil {
		byCat = map[Category][]Point{}
		s.data[country] = byCat
	}
	byCat[cat] = append(byCat[cat], pts...)
}

func (s *Set) reject(r normalize.Record, field string, err error) {
	s.Rejected++
	s.logger.Debug("record excluded from aggregation",
		slog.String("region", r.Region),
		slog.String("field", field),
		slog.String("error", err.Error()))
}

// Series returns the points for one key, in insertion order.
func (s *Set) Series(country string, cat Category) ([]Point, bool) {
	pts, ok := s.data[country][cat]
	return pts, ok && len(pts) > 0
}

// Countries returns every country with at least one series, sorted.
func (s *Set) Countries() []string {
	out := make([]string, 0, len(s.data))
	for c := range s.data {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Keys returns every key, sorted by country then category.
func (s *Set) Keys() []Key {
	var keys []Key
	for _, c := range s.Countries() {
		for _, cat := range Categories {
			if _, ok := s.data[c][cat]; ok {
				keys = append(keys, Key{Country: c, Category: cat})
			}
		}
	}
	return keys
}

// Len returns the number of series.
func (s *Set) Len() int {
	n := 0
	for _, byCat := range s.data {
		n += len(byCat)
	}
	return n
}

// Points returns the total number of bucketed observations.
func (s *Set) Points() int {
	n := 0
	for _, byCat := range s.data {
		for _, pts := range byCat {
			n += len(pts)
		}
	}
	return n
}

// Merge appends other's sequences onto s key by key. Callers merging partial
// sets from concurrent workers must serialize calls.
func (s *Set) Merge(other *Set) {
	for _, k := range other.Keys() {
		s.append(k.Country, k.Category, other.data[k.Country][k.Category]...)
	}
	s.Excluded += other.Excluded
	s.Rejected += other.Rejected
}

// Sorted returns a copy of pts ordered by year. Equal years keep their order.
func Sorted(pts []Point) []Point {
	out := append([]Point(nil), pts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Last returns the observation with the greatest year. When several share it,
// the last inserted wins.
func Last(pts []Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	last := pts[0]
	for _, p := range pts[1:] {
		if p.Year >= last.Year {
			last = p
		}
	}
	return last, true
}
