package query

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// PARSER — Free Text → Bound Intents
// ============================================================================
// Parsing is deterministic and rule-based. Each segment goes through
// three stages: intent matching (rules.go), span cleanup, and entity
// binding through the taxonomy resolver. A failure at any stage turns
// that segment into a failed Parsed; siblings are unaffected.
// ============================================================================

// DefaultTopN is the crop-ranking list size when the question does not
// say "top N".
const DefaultTopN = 10

// Parser binds free-text questions to typed intents.
type Parser struct {
	res  *taxonomy.Resolver
	log  *zap.Logger
	topN int
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the parse logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// WithDefaultTopN overrides the ranking size used when a question does
// not say "top N".
func WithDefaultTopN(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.topN = n
		}
	}
}

// New creates a parser over a taxonomy resolver.
func New(res *taxonomy.Resolver, opts ...Option) *Parser {
	p := &Parser{res: res, log: zap.NewNop(), topN: DefaultTopN}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse splits the question into segments and parses each one
// independently, preserving order. It always returns at least one
// element.
func (p *Parser) Parse(question string) []Parsed {
	segs := Segment(question)
	if len(segs) == 0 {
		return []Parsed{{
			Segment: strings.TrimSpace(question),
			Err:     &ParseError{Kind: ErrUnrecognizedIntent, Reason: "empty question"},
		}}
	}

	out := make([]Parsed, 0, len(segs))
	for _, seg := range segs {
		parsed := p.parseSegment(seg)
		if parsed.Err != nil {
			p.log.Debug("segment failed to parse",
				zap.String("segment", seg),
				zap.String("kind", string(parsed.Err.Kind)))
		} else {
			p.log.Debug("segment parsed",
				zap.String("segment", seg),
				zap.String("intent", string(parsed.Intent.Type)))
		}
		out = append(out, parsed)
	}
	return out
}

func (p *Parser) parseSegment(seg string) Parsed {
	typ, sp, ok := matchIntent(seg)
	if !ok {
		return Parsed{Segment: seg, Err: &ParseError{
			Kind:   ErrUnrecognizedIntent,
			Reason: fmt.Sprintf("no known question pattern matches %q", seg),
		}}
	}
	intent, perr := p.bind(seg, typ, sp)
	if perr != nil {
		return Parsed{Segment: seg, Err: perr}
	}
	return Parsed{Segment: seg, Intent: intent}
}

// ----------------------------------------------------------------------------
// Binding
// ----------------------------------------------------------------------------

func (p *Parser) bind(seg string, typ IntentType, sp spans) (*Intent, *ParseError) {
	in := &Intent{Type: typ, Raw: seg, Years: parseYears(seg)}

	switch typ {
	case IntentRainfallAggregate:
		r, perr := p.anyRegion(sp.regions[0])
		if perr != nil {
			return nil, perr
		}
		in.Regions = []*taxonomy.Region{r}

	case IntentRainfallCompare:
		for _, span := range sp.regions {
			r, perr := p.anyRegion(span)
			if perr != nil {
				return nil, perr
			}
			in.Regions = append(in.Regions, r)
		}

	case IntentCropRank:
		r, perr := p.anyRegion(sp.regions[0])
		if perr != nil {
			return nil, perr
		}
		in.Regions = []*taxonomy.Region{r}
		in.TopN = parseTopN(seg, p.topN)

	case IntentDistrictExtreme:
		s, perr := p.state(sp.regions[0])
		if perr != nil {
			return nil, perr
		}
		c, perr := p.crop(sp.crops[0])
		if perr != nil {
			return nil, perr
		}
		in.Regions = []*taxonomy.Region{s}
		in.Crops = []*taxonomy.Crop{c}
		in.Lowest = lowestRe.MatchString(seg)

	case IntentCrossStateCompare:
		for _, span := range sp.regions {
			s, perr := p.state(span)
			if perr != nil {
				return nil, perr
			}
			in.Regions = append(in.Regions, s)
		}
		// The two clauses usually name the same crop; binding both
		// catches questions that switch crops mid-sentence.
		seen := map[string]bool{}
		for _, span := range sp.crops {
			c, perr := p.crop(span)
			if perr != nil {
				return nil, perr
			}
			if !seen[c.Name] {
				seen[c.Name] = true
				in.Crops = append(in.Crops, c)
			}
		}

	case IntentTrend:
		c, perr := p.crop(sp.crops[0])
		if perr != nil {
			return nil, perr
		}
		in.Crops = []*taxonomy.Crop{c}
		if len(sp.regions) > 0 {
			s, perr := p.state(sp.regions[0])
			if perr != nil {
				return nil, perr
			}
			in.Regions = []*taxonomy.Region{s}
		}

	case IntentCorrelation:
		c, perr := p.crop(sp.crops[0])
		if perr != nil {
			return nil, perr
		}
		s, perr := p.state(sp.regions[0])
		if perr != nil {
			return nil, perr
		}
		in.Crops = []*taxonomy.Crop{c}
		in.Regions = []*taxonomy.Region{s}

	case IntentPolicyArgument:
		for _, span := range sp.crops {
			c, perr := p.crop(span)
			if perr != nil {
				return nil, perr
			}
			in.Crops = append(in.Crops, c)
		}
		s, perr := p.state(sp.regions[0])
		if perr != nil {
			return nil, perr
		}
		in.Regions = []*taxonomy.Region{s}
	}

	return in, nil
}

func (p *Parser) anyRegion(span string) (*taxonomy.Region, *ParseError) {
	r, err := p.res.Region(trimSpan(span))
	if err != nil {
		return nil, resolveError(err)
	}
	return r, nil
}

func (p *Parser) state(span string) (*taxonomy.Region, *ParseError) {
	s, err := p.res.State(trimSpan(span))
	if err != nil {
		return nil, resolveError(err)
	}
	return s, nil
}

func (p *Parser) crop(span string) (*taxonomy.Crop, *ParseError) {
	c, err := p.res.Crop(trimSpan(span))
	if err != nil {
		return nil, resolveError(err)
	}
	return c, nil
}

// resolveError maps a taxonomy lookup failure onto the parser's
// unresolved-entity class, keeping the resolver's message (including
// any "did you mean" suggestions) intact.
func resolveError(err error) *ParseError {
	return &ParseError{Kind: ErrUnresolvedEntity, Reason: err.Error()}
}

// ----------------------------------------------------------------------------
// Span cleanup
// ----------------------------------------------------------------------------

// trailingStop are filler words trimmed off the end of a captured span
// before resolution, so "Tamil Nadu for the last" binds as "Tamil Nadu"
// and "Wheat production" as "Wheat".
var trailingStop = map[string]bool{
	"the": true, "a": true, "an": true, "for": true, "in": true, "of": true,
	"and": true, "with": true, "over": true, "during": true, "from": true,
	"last": true, "past": true, "most": true, "recent": true, "latest": true,
	"year": true, "years": true, "available": true, "decade": true,
	"period": true, "state": true, "states": true, "district": true,
	"districts": true, "production": true, "cultivation": true,
	"output": true, "produced": true, "grown": true, "data": true,
	"historical": true, "based": true, "on": true, "between": true,
	"annual": true, "average": true, "per": true, "rainfall": true,
	"crop": true, "crops": true, "same": true, "this": true, "that": true,
	"against": true, "versus": true, "vs": true, "compared": true,
	"it": true, "which": true, "has": true, "had": true,
}

var leadingStop = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true,
	"production": true, "cultivation": true, "output": true,
	"annual": true, "average": true, "total": true,
}

// trimSpan strips leading and trailing filler words from a raw capture.
func trimSpan(span string) string {
	words := strings.Fields(span)
	for len(words) > 0 && leadingStop[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && trailingStop[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// ----------------------------------------------------------------------------
// Years, top-N, qualifiers
// ----------------------------------------------------------------------------

var (
	yearRangeRe = regexp.MustCompile(`\b((?:19|20)\d{2})\s*(?:-|–|to|through)\s*((?:19|20)\d{2})\b`)
	yearRe      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	lastNRe     = regexp.MustCompile(`(?i)\b(?:last|past|previous)\s+(\d+)\s+years?\b`)
	decadeRe    = regexp.MustCompile(`(?i)\b(?:last|past|previous)\s+decade\b`)
	latestRe    = regexp.MustCompile(`(?i)\b(?:most\s+recent|latest)\s+year\b`)
	topNRe      = regexp.MustCompile(`(?i)\btop\s+(\d+)\b`)
	lowestRe    = regexp.MustCompile(`(?i)\b(?:lowest|least|minimum|smallest)\b`)
)

// parseYears extracts the year scope from a segment. "last N" and
// "latest" stay symbolic here; the executor resolves them against the
// years the data actually covers.
func parseYears(seg string) YearSpec {
	if m := yearRangeRe.FindStringSubmatch(seg); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if from > to {
			from, to = to, from
		}
		years := make([]int, 0, to-from+1)
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
		return YearSpec{Kind: YearsExplicit, Years: years}
	}
	if m := lastNRe.FindStringSubmatch(seg); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return YearSpec{Kind: YearsLastN, N: n}
		}
	}
	if decadeRe.MatchString(seg) {
		return YearSpec{Kind: YearsLastN, N: 10}
	}
	if latestRe.MatchString(seg) {
		return YearSpec{Kind: YearsLatest}
	}
	if ms := yearRe.FindAllString(seg, -1); ms != nil {
		seen := map[int]bool{}
		var years []int
		for _, m := range ms {
			y, _ := strconv.Atoi(m)
			if !seen[y] {
				seen[y] = true
				years = append(years, y)
			}
		}
		sort.Ints(years)
		return YearSpec{Kind: YearsExplicit, Years: years}
	}
	return YearSpec{Kind: YearsAll}
}

func parseTopN(seg string, fallback int) int {
	if m := topNRe.FindStringSubmatch(seg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
