// Package markup strips Markdown and BBCode syntax from changelog text
// before it is embedded into the companion data file. Stripping is best
// effort and not lossless.
//
// The rules use backreferences and lookaround to pair closing code fences
// and emphasis markers, so they are compiled with regexp2.
package markup

import (
	"strings"

	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/dlclark/regexp2"
)

type rule struct {
	re   *regexp2.Regexp
	repl string
}

func mustRule(pattern, repl string, opts regexp2.RegexOptions) rule {
	return rule{re: regexp2.MustCompile(pattern, opts), repl: repl}
}

const (
	ml = regexp2.Multiline
	sl = regexp2.Singleline
	ic = regexp2.IgnoreCase
)

var markdownRules = []rule{
	mustRule("(`{3,})[\\w-]*\\n?(.*?)\\1", "$2", sl),                               // fenced code
	mustRule("`([^`\\n]+?)`", "$1", 0),                                             // inline code
	mustRule(`<[^>\n]*>`, "", 0),                                                   // html tags
	mustRule(`^[=-]{2,}[ \t]*$`, "", ml),                                           // setext underlines
	mustRule(`\[\^[^\]]+\](:[^\n]*)?`, "", 0),                                      // footnotes
	mustRule(`^[ \t]{0,3}\[[^\]]+\]:[ \t]*\S+([ \t]+"[^"]*")?[ \t]*$`, "", ml),     // reference definitions
	mustRule(`!\[([^\]]*)\][\[(][^\])]*[\])]`, "", 0),                              // images
	mustRule(`\[([^\]]*)\][\[(][^\])]*[\])]`, "$1", 0),                             // links
	mustRule(`^[ \t]{0,3}>[ \t]?`, "", ml),                                         // blockquotes
	mustRule(`^[ \t]{0,3}#{1,6}[ \t]+`, "", ml),                                    // atx header openers
	mustRule(`[ \t]+#+[ \t]*$`, "", ml),                                            // atx header closers
	mustRule(`(?<![\w*_~])([*_]{1,3}|~~)(?=\S)(.+?)(?<=\S)\1(?![\w*_~])`, "$2", 0), // emphasis
	mustRule(`\n{3,}`, "\n\n", 0),                                                  // blank runs
}

var bbcodeRules = []rule{
	mustRule(`\[img[^\]]*\].*?\[/img\]`, "", ic|sl),
	mustRule(`\[url=([^\]]+)\](.*?)\[/url\]`, "$2", ic|sl),
	mustRule(`\[url\](.*?)\[/url\]`, "$1", ic|sl),
	mustRule(`\[(b|i|u|s|code|quote|center|left|right|size|color|font|h[1-6])(=[^\]]*)?\](.*?)\[/\1\]`, "$3", ic|sl),
	mustRule(`\[\*\]\s*`, "- ", 0),
	mustRule(`\[/?[a-z][a-z0-9]*(=[^\]]*)?\]`, "", ic),
	mustRule(`\n{3,}`, "\n\n", 0),
}

// maxPasses bounds the re-application of rules for nested markup.
const maxPasses = 4

func apply(rules []rule, text string) string {
	logger := logging.GetLogger("markup")
	out := text
	for pass := 0; pass < maxPasses; pass++ {
		before := out
		for _, r := range rules {
			replaced, err := r.re.Replace(out, r.repl, -1, -1)
			if err != nil {
				// regexp2 only fails on match timeouts; keep the text as is
				logger.Debug().Err(err).Str("pattern", r.re.String()).Msg("Skipping markup rule")
				continue
			}
			out = replaced
		}
		if out == before {
			break
		}
	}
	return strings.TrimSpace(out)
}

// SanitizeMarkdown strips Markdown syntax, keeping link labels and the
// content of emphasis and code spans.
func SanitizeMarkdown(text string) string {
	return apply(markdownRules, text)
}

// SanitizeBBCode strips BBCode tags, keeping the enclosed text. Images are
// removed entirely.
func SanitizeBBCode(text string) string {
	return apply(bbcodeRules, text)
}

// Sanitize strips the changelog according to its declared format. Text in
// an unknown format is only trimmed.
func Sanitize(c *types.Changelog) string {
	if c == nil || c.Text == "" {
		return ""
	}
	switch c.Format {
	case types.ChangelogMarkdown:
		return SanitizeMarkdown(c.Text)
	case types.ChangelogBBCode:
		return SanitizeBBCode(c.Text)
	default:
		return strings.TrimSpace(c.Text)
	}
}
