package profile_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/domain/model/profile"
)

func TestRecommendationsValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var recs profile.Recommendations
		gt.NoError(t, json.Unmarshal([]byte(`{
			"dream": [{"name": "MIT", "country": "USA", "reason": "Strong CS", "risk": "Very competitive", "imageUrl": null}],
			"target": [],
			"safe": []
		}`), &recs))

		gt.NoError(t, recs.Validate())
		gt.False(t, recs.IsEmpty())
		gt.Equal(t, *recs.Dream[0].Country, "USA")
		gt.Nil(t, recs.Dream[0].ImageURL)
	})

	t.Run("empty", func(t *testing.T) {
		var recs profile.Recommendations
		gt.True(t, recs.IsEmpty())
		gt.Error(t, recs.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		recs := profile.Recommendations{
			Safe: []profile.University{{Reason: "cheap"}},
		}
		gt.Error(t, recs.Validate())
	})
}
