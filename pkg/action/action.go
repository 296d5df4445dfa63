// Package action models the environment changes produced during activation.
// Actions are only constructed and ordered here; translating them into a
// particular shell and running them is up to the caller.
package action

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Kind identifies the type of an action
type Kind string

const (
	KindMessage Kind = "message"
	KindExecute Kind = "execute"
	KindSet     Kind = "set"
	KindAugment Kind = "augment"
)

// Action is a single instruction for the activation orchestrator
type Action interface {
	Kind() Kind
	fmt.Stringer
}

// Message displays Text to the user
type Message struct {
	Text string
}

// Execute runs CommandLine in the activating shell
type Execute struct {
	CommandLine string
}

// Set assigns Value to the environment variable Name
type Set struct {
	Name  string
	Value string
}

// Augment prepends Values to the path-like environment variable Name,
// keeping their order and the variable's existing content.
type Augment struct {
	Name   string
	Values []string
}

func (Message) Kind() Kind { return KindMessage }
func (Execute) Kind() Kind { return KindExecute }
func (Set) Kind() Kind     { return KindSet }
func (Augment) Kind() Kind { return KindAugment }

func (a Message) String() string { return fmt.Sprintf("Message(%q)", a.Text) }
func (a Execute) String() string { return fmt.Sprintf("Execute(%s)", a.CommandLine) }
func (a Set) String() string     { return fmt.Sprintf("Set(%s=%s)", a.Name, a.Value) }
func (a Augment) String() string {
	return fmt.Sprintf("Augment(%s+=[%s])", a.Name, strings.Join(a.Values, ", "))
}

// List is an ordered sequence of actions
type List []Action

// OfKind returns the actions of kind k, in order
func (l List) OfKind(k Kind) List {
	var out List
	for _, a := range l {
		if a.Kind() == k {
			out = append(out, a)
		}
	}
	return out
}

// Find returns the first Set or Augment action for the variable name
func (l List) Find(name string) (Action, bool) {
	for _, a := range l {
		switch v := a.(type) {
		case Set:
			if v.Name == name {
				return v, true
			}
		case Augment:
			if v.Name == name {
				return v, true
			}
		}
	}
	return nil, false
}

// Document is the serialized form of an action
type Document struct {
	Kind        Kind     `yaml:"kind" json:"kind"`
	Text        string   `yaml:"text,omitempty" json:"text,omitempty"`
	CommandLine string   `yaml:"command_line,omitempty" json:"command_line,omitempty"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Value       string   `yaml:"value,omitempty" json:"value,omitempty"`
	Values      []string `yaml:"values,omitempty" json:"values,omitempty"`
}

// Documents converts the list into its serialized form
func (l List) Documents() []Document {
	docs := make([]Document, 0, len(l))
	for _, a := range l {
		switch v := a.(type) {
		case Message:
			docs = append(docs, Document{Kind: KindMessage, Text: v.Text})
		case Execute:
			docs = append(docs, Document{Kind: KindExecute, CommandLine: v.CommandLine})
		case Set:
			docs = append(docs, Document{Kind: KindSet, Name: v.Name, Value: v.Value})
		case Augment:
			docs = append(docs, Document{Kind: KindAugment, Name: v.Name, Values: v.Values})
		}
	}
	return docs
}

// FromDocuments converts serialized actions back into a list
func FromDocuments(docs []Document) (List, error) {
	l := make(List, 0, len(docs))
	for i, d := range docs {
		switch d.Kind {
		case KindMessage:
			l = append(l, Message{Text: d.Text})
		case KindExecute:
			l = append(l, Execute{CommandLine: d.CommandLine})
		case KindSet:
			l = append(l, Set{Name: d.Name, Value: d.Value})
		case KindAugment:
			l = append(l, Augment{Name: d.Name, Values: d.Values})
		default:
			return nil, fmt.Errorf("action %d has unknown kind %q", i, d.Kind)
		}
	}
	return l, nil
}

// MarshalYAML implements yaml.InterfaceMarshaler
func (l List) MarshalYAML() (interface{}, error) {
	return l.Documents(), nil
}

// MarshalJSON implements json.Marshaler
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Documents())
}

// Decode parses a YAML (or JSON) action document list
func Decode(data []byte) (List, error) {
	var docs []Document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to parse actions")
	}
	return FromDocuments(docs)
}
