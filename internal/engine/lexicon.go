package engine

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mindmend/internal/domain"
	"mindmend/internal/domain/model"
)

//go:embed lexicon
var LexiconFS embed.FS

// DefaultLexiconPath is the location of the built-in lexicon inside LexiconFS.
const DefaultLexiconPath = "lexicon/lexicon.yaml"

// ---- YAML shape ----

type lexiconFile struct {
	ReplyConfidence float64          `yaml:"reply_confidence"`
	Greeting        greetingFile     `yaml:"greeting"`
	Sentiment       sentimentFile    `yaml:"sentiment"`
	Themes          []themeFile      `yaml:"themes"`
	Feelings        []feelingFile    `yaml:"feelings"`
	Distortions     []distortionFile `yaml:"distortions"`
	Composer        composerFile     `yaml:"composer"`
	Insights        insightsFile     `yaml:"insights"`
	Techniques      techniquesFile   `yaml:"techniques"`
	Grounding       groundingFile    `yaml:"grounding"`
	FollowUps       followUpsFile    `yaml:"follow_ups"`
}

type greetingFile struct {
	Text       string  `yaml:"text"`
	Confidence float64 `yaml:"confidence"`
}

type sentimentFile struct {
	Negative []string `yaml:"negative"`
	Positive []string `yaml:"positive"`
}

type themeFile struct {
	Theme    model.Theme `yaml:"theme"`
	Keywords []string    `yaml:"keywords"`
	Clause   string      `yaml:"clause"`
	Insight  string      `yaml:"insight"`
}

type feelingFile struct {
	Keyword string `yaml:"keyword"`
	Label   string `yaml:"label"`
}

type distortionFile struct {
	Name        model.Distortion `yaml:"name"`
	Pattern     string           `yaml:"pattern"`
	Explanation string           `yaml:"explanation"`
}

type themedText struct {
	Theme model.Theme `yaml:"theme"`
	Text  string      `yaml:"text"`
}

type composerFile struct {
	Openings struct {
		Negative string `yaml:"negative"`
		Positive string `yaml:"positive"`
		Neutral  string `yaml:"neutral"`
	} `yaml:"openings"`
	ThemeClause          string       `yaml:"theme_clause"`
	Feelings             string       `yaml:"feelings"`
	Transition           string       `yaml:"transition"`
	Questions            []themedText `yaml:"questions"`
	LongMessageThreshold int          `yaml:"long_message_threshold"`
	LongMessageQuestion  string       `yaml:"long_message_question"`
	DefaultQuestion      string       `yaml:"default_question"`
}

type insightsFile struct {
	ThemesTitle      string        `yaml:"themes_title"`
	Themes           string        `yaml:"themes"`
	DistortionTitle  string        `yaml:"distortion_title"`
	EmotionalLoad    model.Insight `yaml:"emotional_load"`
	ResourcesPresent model.Insight `yaml:"resources_present"`
}

type techniqueFile struct {
	Label   string   `yaml:"label"`
	Summary string   `yaml:"summary"`
	Steps   []string `yaml:"steps"`
}

type techniquesFile struct {
	NameAndReframe techniqueFile `yaml:"name_and_reframe"`
	InnerMentor    techniqueFile `yaml:"inner_mentor"`
	BodyScan       techniqueFile `yaml:"body_scan"`
}

type practiceFile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Steps       []string `yaml:"steps"`
}

type groundingFile struct {
	SensesReset  practiceFile `yaml:"senses_reset"`
	BoxBreathing practiceFile `yaml:"box_breathing"`
}

type followUpsFile struct {
	Themes          []themedText `yaml:"themes"`
	Catastrophizing string       `yaml:"catastrophizing"`
	Fallback        string       `yaml:"fallback"`
	Grounding       string       `yaml:"grounding"`
}

// ---- compiled form ----

type themeRule struct {
	theme    model.Theme
	keywords int
	match    Predicate
	clause   string
	insight  string
}

type feelingRule struct {
	match Predicate
	label string
}

type distortionRule struct {
	distortion  model.Distortion
	match       Predicate
	explanation string
}

// Lexicon is the compiled, read-only rule and text table set the engine runs on.
// A Lexicon is safe for concurrent use; nothing mutates it after LoadLexicon returns.
type Lexicon struct {
	replyConfidence float64
	greeting        greetingFile

	negative []Predicate
	positive []Predicate

	themes      []themeRule
	feelings    []feelingRule
	distortions []distortionRule

	composer composerFile
	// questions and follow-ups keyed by theme, in declaration order
	questions []themedText
	followUps followUpsFile
	insights  insightsFile

	nameAndReframe model.CopingTechnique
	innerMentor    model.CopingTechnique
	bodyScan       model.CopingTechnique

	sensesReset  model.GroundingPractice
	boxBreathing model.GroundingPractice
}

// LoadLexicon reads a YAML lexicon from fsys and compiles it.
func LoadLexicon(fsys fs.FS, path string) (*Lexicon, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon compiles a YAML lexicon document.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", domain.ErrInvalidLexicon, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidLexicon, err)
	}
	return f.compile()
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	return LoadLexicon(LexiconFS, DefaultLexiconPath)
})

// DefaultLexicon returns the built-in lexicon, compiled once per process.
func DefaultLexicon() (*Lexicon, error) { return defaultLexicon() }

// MustDefaultLexicon is DefaultLexicon for program start-up; it panics on a broken embed.
func MustDefaultLexicon() *Lexicon {
	lex, err := DefaultLexicon()
	if err != nil {
		panic(err)
	}
	return lex
}

func (f *lexiconFile) validate() error {
	if f.ReplyConfidence <= 0 || f.ReplyConfidence > 1 {
		return fmt.Errorf("reply_confidence must be in (0, 1], got %v", f.ReplyConfidence)
	}
	if strings.TrimSpace(f.Greeting.Text) == "" {
		return fmt.Errorf("greeting.text is required")
	}
	if f.Greeting.Confidence <= 0 || f.Greeting.Confidence > 1 {
		return fmt.Errorf("greeting.confidence must be in (0, 1], got %v", f.Greeting.Confidence)
	}
	if len(f.Sentiment.Negative) == 0 || len(f.Sentiment.Positive) == 0 {
		return fmt.Errorf("sentiment keyword lists must not be empty")
	}
	if err := nonBlank("sentiment.negative", f.Sentiment.Negative); err != nil {
		return err
	}
	if err := nonBlank("sentiment.positive", f.Sentiment.Positive); err != nil {
		return err
	}

	if len(f.Themes) != len(model.AllThemes) {
		return fmt.Errorf("expected %d themes, got %d", len(model.AllThemes), len(f.Themes))
	}
	for i, th := range f.Themes {
		if th.Theme != model.AllThemes[i] {
			return fmt.Errorf("themes[%d]: expected %q, got %q", i, model.AllThemes[i], th.Theme)
		}
		if len(th.Keywords) == 0 {
			return fmt.Errorf("theme %s has no keywords", th.Theme)
		}
		if err := nonBlank("theme "+string(th.Theme), th.Keywords); err != nil {
			return err
		}
		if th.Clause == "" || th.Insight == "" {
			return fmt.Errorf("theme %s is missing clause or insight text", th.Theme)
		}
	}

	for i, fe := range f.Feelings {
		if strings.TrimSpace(fe.Keyword) == "" || fe.Label == "" {
			return fmt.Errorf("feelings[%d] needs keyword and label", i)
		}
	}

	if len(f.Distortions) != len(model.AllDistortions) {
		return fmt.Errorf("expected %d distortions, got %d", len(model.AllDistortions), len(f.Distortions))
	}
	for i, d := range f.Distortions {
		if d.Name != model.AllDistortions[i] {
			return fmt.Errorf("distortions[%d]: expected %q, got %q", i, model.AllDistortions[i], d.Name)
		}
		if d.Pattern == "" || d.Explanation == "" {
			return fmt.Errorf("distortion %s needs pattern and explanation", d.Name)
		}
	}

	c := f.Composer
	if c.Openings.Negative == "" || c.Openings.Positive == "" || c.Openings.Neutral == "" {
		return fmt.Errorf("composer openings must cover negative, positive and neutral")
	}
	if c.Transition == "" || c.DefaultQuestion == "" || c.LongMessageQuestion == "" {
		return fmt.Errorf("composer transition and fallback questions are required")
	}
	if c.LongMessageThreshold <= 0 {
		return fmt.Errorf("composer.long_message_threshold must be positive")
	}
	// each template interpolates exactly one value
	for _, tf := range []textField{
		{"composer.theme_clause", c.ThemeClause},
		{"composer.feelings", c.Feelings},
		{"insights.themes", f.Insights.Themes},
		{"insights.distortion_title", f.Insights.DistortionTitle},
	} {
		if strings.Count(tf.text, "%s") != 1 {
			return fmt.Errorf("%s must contain exactly one %%s", tf.key)
		}
	}
	for _, tf := range []textField{
		{"insights.themes_title", f.Insights.ThemesTitle},
		{"insights.emotional_load.title", f.Insights.EmotionalLoad.Title},
		{"insights.emotional_load.description", f.Insights.EmotionalLoad.Description},
		{"insights.resources_present.title", f.Insights.ResourcesPresent.Title},
		{"insights.resources_present.description", f.Insights.ResourcesPresent.Description},
	} {
		if strings.TrimSpace(tf.text) == "" {
			return fmt.Errorf("%s is required", tf.key)
		}
	}
	for _, q := range c.Questions {
		if !q.Theme.Valid() || q.Text == "" {
			return fmt.Errorf("composer question for %q is invalid", q.Theme)
		}
	}

	for _, t := range []techniqueFile{f.Techniques.NameAndReframe, f.Techniques.InnerMentor, f.Techniques.BodyScan} {
		if t.Label == "" || len(t.Steps) == 0 {
			return fmt.Errorf("technique %q needs a label and steps", t.Label)
		}
	}
	for _, p := range []practiceFile{f.Grounding.SensesReset, f.Grounding.BoxBreathing} {
		if p.Name == "" || len(p.Steps) == 0 {
			return fmt.Errorf("grounding practice %q needs a name and steps", p.Name)
		}
	}

	for _, fu := range f.FollowUps.Themes {
		if !fu.Theme.Valid() || fu.Text == "" {
			return fmt.Errorf("follow-up for %q is invalid", fu.Theme)
		}
	}
	if f.FollowUps.Fallback == "" || f.FollowUps.Grounding == "" || f.FollowUps.Catastrophizing == "" {
		return fmt.Errorf("follow-up fallback, grounding and catastrophizing prompts are required")
	}
	// the trailing grounding prompt must never collapse into an earlier one
	others := []string{f.FollowUps.Fallback, f.FollowUps.Catastrophizing}
	for _, fu := range f.FollowUps.Themes {
		others = append(others, fu.Text)
	}
	for _, o := range others {
		if o == f.FollowUps.Grounding {
			return fmt.Errorf("follow-up grounding prompt duplicates %q", o)
		}
	}
	return nil
}

type textField struct {
	key  string
	text string
}

func nonBlank(where string, keywords []string) error {
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%s[%d] is blank", where, i)
		}
	}
	return nil
}

func (f *lexiconFile) compile() (*Lexicon, error) {
	lex := &Lexicon{
		replyConfidence: f.ReplyConfidence,
		greeting:        f.Greeting,
		negative:        keywordRules(f.Sentiment.Negative),
		positive:        keywordRules(f.Sentiment.Positive),
		composer:        f.Composer,
		questions:       f.Composer.Questions,
		followUps:       f.FollowUps,
		insights:        f.Insights,
		nameAndReframe:  f.Techniques.NameAndReframe.technique(),
		innerMentor:     f.Techniques.InnerMentor.technique(),
		bodyScan:        f.Techniques.BodyScan.technique(),
		sensesReset:     f.Grounding.SensesReset.practice(),
		boxBreathing:    f.Grounding.BoxBreathing.practice(),
	}

	for _, th := range f.Themes {
		lex.themes = append(lex.themes, themeRule{
			theme:    th.Theme,
			keywords: len(th.Keywords),
			match:    ContainsAny(th.Keywords...),
			clause:   th.Clause,
			insight:  th.Insight,
		})
	}
	for _, fe := range f.Feelings {
		lex.feelings = append(lex.feelings, feelingRule{
			match: ContainsKeyword(fe.Keyword),
			label: fe.Label,
		})
	}
	for _, d := range f.Distortions {
		re, err := regexp.Compile("(?i)" + d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: distortion %s: %v", domain.ErrInvalidLexicon, d.Name, err)
		}
		lex.distortions = append(lex.distortions, distortionRule{
			distortion:  d.Name,
			match:       MatchesPattern(re),
			explanation: d.Explanation,
		})
	}
	return lex, nil
}

func keywordRules(keywords []string) []Predicate {
	out := make([]Predicate, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, ContainsKeyword(kw))
	}
	return out
}

func (t techniqueFile) technique() model.CopingTechnique {
	return model.CopingTechnique{Label: t.Label, Summary: t.Summary, Steps: t.Steps}
}

func (p practiceFile) practice() model.GroundingPractice {
	return model.GroundingPractice{Name: p.Name, Description: p.Description, Steps: p.Steps}
}

// Stats reports table sizes, for diagnostics.
type Stats struct {
	NegativeKeywords int `json:"negative_keywords"`
	PositiveKeywords int `json:"positive_keywords"`
	Themes           int `json:"themes"`
	ThemeKeywords    int `json:"theme_keywords"`
	Feelings         int `json:"feelings"`
	Distortions      int `json:"distortions"`
	Techniques       int `json:"techniques"`
	Grounding        int `json:"grounding_practices"`
}

func (l *Lexicon) Stats() Stats {
	return Stats{
		NegativeKeywords: len(l.negative),
		PositiveKeywords: len(l.positive),
		Themes:           len(l.themes),
		ThemeKeywords:    l.themeKeywordCount(),
		Feelings:         len(l.feelings),
		Distortions:      len(l.distortions),
		Techniques:       3,
		Grounding:        2,
	}
}

func (l *Lexicon) themeKeywordCount() int {
	n := 0
	for _, th := range l.themes {
		n += th.keywords
	}
	return n
}
