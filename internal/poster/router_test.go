package poster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/media"
)

func TestRouter_Defaults(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		category media.Category
		want     string
	}{
		{media.CategoryGame, StrategyGame},
		{media.CategoryAnime, StrategyAnime},
		{media.CategoryMusic, StrategyAudio},
		{media.CategoryBook, StrategyGeneric},
		{media.CategoryComic, StrategyGeneric},
		{media.CategoryFilm, StrategyVideo},
		{media.CategorySerie, StrategyVideo},
		{media.CategoryEmission, StrategyVideo},
		{media.CategoryOther, StrategyVideo},
		{media.Category("unknown"), StrategyVideo},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			name, s := r.Route(tt.category)
			assert.Equal(t, tt.want, name)
			assert.NotNil(t, s)
		})
	}
}

func TestRouter_RegisterReplaces(t *testing.T) {
	r := NewRouter()

	called := 0
	r.Register(media.CategoryGame, "custom", StrategyFunc(func(_ context.Context, _ *Service, rc *RoutingContext) (FetchResult, error) {
		called++
		return notFound(rc.ReleaseID, "custom", "no custom match"), nil
	}))

	name, s := r.Route(media.CategoryGame)
	require.Equal(t, "custom", name)

	res, err := s.Fetch(context.Background(), nil, &RoutingContext{ReleaseID: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	assert.Equal(t, int64(7), res.SourceID)
	assert.Equal(t, "no custom match", res.Body.Error)

	name, _ = r.Route(media.CategoryAnime)
	assert.Equal(t, StrategyAnime, name)
}
