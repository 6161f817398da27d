package matcher

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 5_1_1 like Mac OS X) AppleWebKit/534.46 (KHTML, like Gecko) Version/5.1 Mobile/9B206 Safari/7534.48.3"

func TestCompile(t *testing.T) {
	p, err := Compile(`(Firefox)/(\d+)\.(\d+)`, true, 0)
	require.NoError(t, err)
	assert.Equal(t, `(Firefox)/(\d+)\.(\d+)`, p.String())
	assert.True(t, p.CaseSensitive())
	assert.Equal(t, 3, p.Groups())
}

func TestCompile_BacktrackingSyntax(t *testing.T) {
	// lookbehind is not RE2 syntax
	p, err := Compile(`(?<!Mobile )Safari`, true, 0)
	require.NoError(t, err)

	var m Match
	assert.True(t, p.Match("Desktop Safari", &m))
	assert.False(t, p.Match("Mobile Safari", &m))
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`(unclosed`, true, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(`[`, true)
	})
}

func TestPattern_Match(t *testing.T) {
	p := MustCompile(`(iPod|iPhone|iPad).+Version/(\d+)\.(\d+)(?:\.(\d+)|).*[ +]Safari`, true)

	var m Match
	require.True(t, p.Match(iphoneUA, &m))
	assert.Equal(t, 5, m.Count())
	assert.True(t, strings.HasPrefix(m.Get(0), "iPhone"))
	assert.Equal(t, "iPhone", m.Get(1))
	assert.Equal(t, "5", m.Get(2))
	assert.Equal(t, "1", m.Get(3))
	assert.Equal(t, "", m.Get(4), "unmatched optional group")
	assert.Equal(t, "", m.Get(5), "beyond group count")
	assert.Equal(t, "", m.Get(-1))
}

func TestPattern_MatchIsUnanchored(t *testing.T) {
	p := MustCompile(`Safari`, true)
	var m Match
	require.True(t, p.Match(iphoneUA, &m))
	assert.Equal(t, "Safari", m.Get(0))
	assert.Equal(t, 1, m.Count())
}

func TestPattern_CaseInsensitive(t *testing.T) {
	var m Match
	sensitive := MustCompile(`(kindle)`, true)
	assert.False(t, sensitive.Match("Kindle/3.0", &m))

	insensitive := MustCompile(`(kindle)`, false)
	require.True(t, insensitive.Match("Kindle/3.0", &m))
	assert.Equal(t, "Kindle", m.Get(1))
}

func TestPattern_FailedMatchResets(t *testing.T) {
	p := MustCompile(`(Firefox)/(\d+)`, true)
	var m Match
	require.True(t, p.Match("Firefox/3", &m))
	require.Equal(t, 3, m.Count())

	assert.False(t, p.Match("Chrome/20", &m))
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, "", m.Get(1))
}

func TestPattern_KeepsTenGroups(t *testing.T) {
	p := MustCompile(`(a)(b)(c)(d)(e)(f)(g)(h)(i)(j)(k)`, true)
	assert.Equal(t, 11, p.Groups())

	var m Match
	require.True(t, p.Match("abcdefghijk", &m))
	assert.Equal(t, MaxGroups, m.Count())
	assert.Equal(t, "i", m.Get(9))
	assert.Equal(t, "", m.Get(10))
}

func TestPattern_MatchErrTimeout(t *testing.T) {
	p, err := Compile(`^(a+)+$`, true, 10*time.Millisecond)
	require.NoError(t, err)

	var m Match
	ok, err := p.MatchErr(strings.Repeat("a", 40)+"!", &m)
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, 0, m.Count())
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
}

func TestPattern_ConcurrentUse(t *testing.T) {
	p := MustCompile(`(iPod|iPhone|iPad)`, true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var m Match
			for j := 0; j < 100; j++ {
				if assert.True(t, p.Match(iphoneUA, &m)) {
					assert.Equal(t, "iPhone", m.Get(1))
				}
			}
		}()
	}
	wg.Wait()
}
