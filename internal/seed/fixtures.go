package seed

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

// TagSet is a themed vocabulary used to tag generated posts, so seeded data
// exercises tag filtering with realistic overlap.
type TagSet struct {
	Theme string   `yaml:"theme"`
	Tags  []string `yaml:"tags"`
}

//go:embed tagsets.yml
var tagSetsYAML []byte

// MustTagSets loads the embedded tag vocabulary. Panics on a malformed
// fixture, which is a build-time mistake.
func MustTagSets() []TagSet {
	var fixture struct {
		TagSets []TagSet `yaml:"tagSets"`
	}
	if err := yaml.Unmarshal(tagSetsYAML, &fixture); err != nil {
		panic("seed: invalid tagsets.yml: " + err.Error())
	}
	if len(fixture.TagSets) == 0 {
		panic("seed: tagsets.yml contains no tag sets")
	}
	return fixture.TagSets
}
