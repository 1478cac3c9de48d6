package history

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleHistoryBot/internal/dates"
)

func mustDate(t *testing.T, text string) dates.Preserved {
	t.Helper()
	d, err := dates.Parse(text)
	require.NoError(t, err)
	return d
}

func action(t *testing.T, kind ActionKind, date, result string) Action {
	t.Helper()
	return Action{Kind: kind, Date: mustDate(t, date), Result: result}
}

func TestStatusTokenTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind   ActionKind
		result string
		want   string
	}{
		{KindFAC, "promoted", "FA"},
		{KindFAC, "Passed", "FA"},
		{KindFAC, "not promoted", "FFAC"},
		{KindFAR, "kept", "FA"},
		{KindFAR, "demoted", "FFA"},
		{KindFAR, "removed", "FFA"},
		{KindFLC, "promoted", "FL"},
		{KindFLC, "failed", "FFLC"},
		{KindFLR, "keep", "FL"},
		{KindFLR, "remove", "FFL"},
		{KindFPROC, "promoted", "FPO"},
		{KindFPROC, "not promoted", "FFPOC"},
		{KindFPOR, "kept", "FPO"},
		{KindFPOR, "demoted", "FFPO"},
		{KindGAN, "listed", "GA"},
		{KindGAN, "not listed", "FGAN"},
		{KindGAR, "kept", "GA"},
		{KindGAR, "delisted", "DGA"},
	}
	for _, tc := range cases {
		tok, err := statusToken(Action{Kind: tc.kind, Result: tc.result})
		require.NoError(t, err, "%s %q", tc.kind, tc.result)
		assert.Equal(t, tc.want, tok, "%s %q", tc.kind, tc.result)
	}
}

func TestStatusTokenSilentKinds(t *testing.T) {
	t.Parallel()

	// Administrative actions never contribute a token, whatever the result.
	for _, kind := range []ActionKind{KindBP, KindFTC, KindFTR, KindGTC, KindPR, KindWPR, KindWAR, KindAFD, KindMFD, KindTFD, KindCSD, KindPROD, KindDRV} {
		tok, err := statusToken(Action{Kind: kind, Result: "whatever"})
		require.NoError(t, err, kind)
		assert.Empty(t, tok, kind)
	}
}

func TestStatusTokenRefusesUnknownResults(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{
		{Kind: KindFAC, Result: "maybe"},
		{Kind: KindGAN, Result: ""},
		{Kind: KindGAR, Result: "speedy"},
		{Kind: KindRBP, Result: "promoted"},
	} {
		_, err := statusToken(a)
		assert.ErrorIs(t, err, ErrUnknownActionResult, "%s %q", a.Kind, a.Result)
	}
}

func TestSortAndResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		actions []Action
		want    string
	}{
		{
			name:    "single promotion",
			actions: []Action{action(t, KindFAC, "January 4, 2004", "promoted")},
			want:    "FA",
		},
		{
			name: "demotion wins over old promotion",
			actions: []Action{
				action(t, KindFAC, "January 4, 2004", "promoted"),
				action(t, KindFAR, "March 1, 2006", "demoted"),
			},
			want: "FFA",
		},
		{
			name: "former FA trumps an older GA listing",
			actions: []Action{
				action(t, KindGAN, "May 2, 2003", "listed"),
				action(t, KindFAC, "January 4, 2004", "promoted"),
				action(t, KindFAR, "March 1, 2006", "demoted"),
			},
			want: "FFA",
		},
		{
			name: "recent GA track supersedes older one",
			actions: []Action{
				action(t, KindGAN, "May 2, 2003", "listed"),
				action(t, KindGAR, "June 8, 2005", "delisted"),
			},
			want: "DGA",
		},
		{
			name: "failed candidacy with good article",
			actions: []Action{
				action(t, KindGAN, "May 2, 2003", "listed"),
				action(t, KindFAC, "January 4, 2004", "not promoted"),
			},
			want: "FFAC/GA",
		},
		{
			name: "list promotions are capped to the most recent featured token",
			actions: []Action{
				action(t, KindFLC, "May 2, 2003", "promoted"),
				action(t, KindFLR, "June 8, 2005", "removed"),
			},
			want: "FFL",
		},
		{
			name:    "no actions yields empty status",
			actions: nil,
			want:    "",
		},
		{
			name: "silent kinds do not disturb the outcome",
			actions: []Action{
				action(t, KindPR, "May 2, 2002", "reviewed"),
				action(t, KindGAN, "May 2, 2003", "listed"),
				action(t, KindAFD, "June 1, 2004", "keep"),
			},
			want: "GA",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ah := &ArticleHistory{Actions: tc.actions}
			require.NoError(t, ah.SortAndResolve())
			assert.Equal(t, tc.want, ah.CurrentStatus)
		})
	}
}

func TestSortAndResolveSortsAscending(t *testing.T) {
	t.Parallel()

	ah := &ArticleHistory{Actions: []Action{
		action(t, KindFAR, "March 1, 2006", "demoted"),
		action(t, KindFAC, "January 4, 2004", "promoted"),
	}}
	require.NoError(t, ah.SortAndResolve())
	require.Len(t, ah.Actions, 2)
	assert.Equal(t, KindFAC, ah.Actions[0].Kind)
	assert.Equal(t, KindFAR, ah.Actions[1].Kind)
}

func TestResolveOrderInvariant(t *testing.T) {
	t.Parallel()

	base := []Action{
		action(t, KindGAN, "May 2, 2003", "listed"),
		action(t, KindFAC, "January 4, 2004", "not promoted"),
		action(t, KindPR, "May 2, 2002", "reviewed"),
		action(t, KindAFD, "June 1, 2004", "keep"),
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]Action(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		ah := &ArticleHistory{Actions: shuffled}
		require.NoError(t, ah.SortAndResolve())
		assert.Equal(t, "FFAC/GA", ah.CurrentStatus)
	}
}

func TestResolveAmbiguousMultiStatus(t *testing.T) {
	t.Parallel()

	ah := &ArticleHistory{Actions: []Action{
		action(t, KindFAC, "January 4, 2004", "not promoted"),
		action(t, KindGAN, "May 2, 2006", "listed"),
	}}
	// GA is more recent than FFAC here, so the combination falls outside
	// the whitelist.
	err := ah.SortAndResolve()
	assert.ErrorIs(t, err, ErrAmbiguousStatus)
}

func TestResolveStatusMismatch(t *testing.T) {
	t.Parallel()

	ah := &ArticleHistory{
		CurrentStatus: "GA",
		Actions: []Action{
			action(t, KindFAC, "January 4, 2004", "promoted"),
			action(t, KindFAR, "March 1, 2006", "demoted"),
		},
	}
	err := ah.SortAndResolve()
	assert.ErrorIs(t, err, ErrStatusMismatch)
	assert.Equal(t, "GA", ah.CurrentStatus, "declared status must not be overwritten on failure")
}

func TestResolveAcceptsRefinement(t *testing.T) {
	t.Parallel()

	// The derived multi-token status strictly refines the declared one.
	ah := &ArticleHistory{
		CurrentStatus: "GA",
		Actions: []Action{
			action(t, KindGAN, "May 2, 2003", "listed"),
			action(t, KindFAC, "January 4, 2004", "not promoted"),
		},
	}
	require.NoError(t, ah.SortAndResolve())
	assert.Equal(t, "FFAC/GA", ah.CurrentStatus)
}

func TestResolveKeepsMatchingDeclaredStatus(t *testing.T) {
	t.Parallel()

	ah := &ArticleHistory{
		CurrentStatus: "FA",
		Actions:       []Action{action(t, KindFAC, "January 4, 2004", "promoted")},
	}
	require.NoError(t, ah.SortAndResolve())
	assert.Equal(t, "FA", ah.CurrentStatus)
}

func TestSetTopicConflict(t *testing.T) {
	t.Parallel()

	ah := &ArticleHistory{}
	require.NoError(t, ah.SetTopic("Chemistry"))
	require.NoError(t, ah.SetTopic("chemistry"), "case-insensitive repeat is fine")
	assert.ErrorIs(t, ah.SetTopic("Physics"), ErrTopicConflict)
}
