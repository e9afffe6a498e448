package profile

import (
	"github.com/m-mizutani/goerr/v2"
)

// University is one recommended university
type University struct {
	Name     string  `firestore:"name" json:"name"`
	Country  *string `firestore:"country" json:"country"`
	Reason   string  `firestore:"reason" json:"reason"`
	Risk     string  `firestore:"risk" json:"risk"`
	ImageURL *string `firestore:"image_url" json:"imageUrl"`
}

// Recommendations groups universities by how reachable they are for the student
type Recommendations struct {
	Dream  []University `firestore:"dream" json:"dream"`
	Target []University `firestore:"target" json:"target"`
	Safe   []University `firestore:"safe" json:"safe"`
}

// IsEmpty returns true if no category has any university
func (x *Recommendations) IsEmpty() bool {
	return x == nil || (len(x.Dream) == 0 && len(x.Target) == 0 && len(x.Safe) == 0)
}

func (x Recommendations) Validate() error {
	if x.IsEmpty() {
		return goerr.New("no university in recommendations")
	}

	for category, list := range map[string][]University{
		"dream":  x.Dream,
		"target": x.Target,
		"safe":   x.Safe,
	} {
		for i, u := range list {
			if u.Name == "" {
				return goerr.New("university name is required",
					goerr.V("category", category),
					goerr.V("index", i))
			}
		}
	}

	return nil
}
