// Package guide serves the usage documents behind the help, schema and
// workflow tools. The documents are embedded YAML so they can be edited
// without touching code.
package guide

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed docs/*.yaml
var docs embed.FS

// Topic names one embedded document.
type Topic string

const (
	TopicHelp     Topic = "help"
	TopicSchema   Topic = "schema"
	TopicWorkflow Topic = "workflow"
)

// Topics lists every available document.
var Topics = []Topic{TopicHelp, TopicSchema, TopicWorkflow}

// Load decodes the document for topic into a generic tree suitable for JSON
// encoding.
func Load(topic Topic) (map[string]interface{}, error) {
	data, err := docs.ReadFile("docs/" + string(topic) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown guide topic %q", topic)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode guide %s: %w", topic, err)
	}
	return doc, nil
}
