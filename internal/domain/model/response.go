package model

import (
	"bytes"
	"encoding/json"
	"slices"
)

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CopingTechnique struct {
	Label   string   `json:"label"`
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

// Clone returns a copy that shares no backing arrays with t.
func (t CopingTechnique) Clone() CopingTechnique {
	t.Steps = slices.Clone(t.Steps)
	return t
}

type GroundingPractice struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

func (p GroundingPractice) Clone() GroundingPractice {
	p.Steps = slices.Clone(p.Steps)
	return p
}

// Grounding is an optional GroundingPractice. The zero value holds no practice.
type Grounding struct {
	practice GroundingPractice
	present  bool
}

func SomeGrounding(p GroundingPractice) Grounding {
	return Grounding{practice: p, present: true}
}

func NoGrounding() Grounding { return Grounding{} }

// Get returns the practice and whether one was suggested.
func (g Grounding) Get() (GroundingPractice, bool) {
	if !g.present {
		return GroundingPractice{}, false
	}
	return g.practice.Clone(), true
}

func (g Grounding) Present() bool { return g.present }

// Ptr returns nil when absent, for wire formats that omit the field.
func (g Grounding) Ptr() *GroundingPractice {
	p, ok := g.Get()
	if !ok {
		return nil
	}
	return &p
}

func (g Grounding) MarshalJSON() ([]byte, error) {
	if !g.present {
		return []byte("null"), nil
	}
	return json.Marshal(g.practice)
}

func (g *Grounding) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*g = NoGrounding()
		return nil
	}
	var p GroundingPractice
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*g = SomeGrounding(p)
	return nil
}

// TherapistResponse is the full structured reply to one user message.
type TherapistResponse struct {
	Reply           Message           `json:"reply"`
	Insights        []Insight         `json:"insights"`
	Techniques      []CopingTechnique `json:"techniques"`
	FollowUpPrompts []string          `json:"followUpPrompts"`
	Grounding       Grounding         `json:"grounding"`
}
