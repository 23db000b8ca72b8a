package scripts

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"git.home.luguber.info/inful/sitebuilder/internal/engine"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// Each op is a script body exercising one exit path.
var balanceOps = []string{
	`{{ set "a" 1 }}`,           // success
	`{{ if }}`,                  // parse failure
	`{{ include "missing" }}`,   // load fault
	`{{ include "../escape" }}`, // rejected include
	`{{ log_info "x" }}`,        // site function, may be out of scope
	`{{ set "page" 1 }}`,        // read-only fault during Evaluate
	`{{ include "ok.html" }}`,   // include success
}

func TestStacksStayBalanced(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	f := newFixture(t)
	f.writeInclude(t, "ok.html", "ok")
	wantGlobals, wantSources := f.depths()

	flagsGen := gen.OneConstOf(FlagNone, FlagAllowSiteFunctions, FlagUntrusted, FlagAllowSiteFunctions|FlagExpect)
	opGen := gen.IntRange(0, len(balanceOps)-1)
	entryGen := gen.IntRange(0, 2)

	properties.Property("scope and source file depths are restored", prop.ForAll(
		func(ops []int, flags Flags, entry int) bool {
			for _, op := range ops {
				text := balanceOps[op]
				switch entry {
				case 0:
					f.manager.Import(text, "s.tmpl", value.NewScope(), flags)
				case 1:
					inst := f.manager.Parse(text, "p.html", engine.ModeFrontMatterAndContent)
					if inst.Unit != nil {
						f.manager.Evaluate(newFakePage("p.html"), inst.Unit, "p.html", value.NewScope())
					}
				case 2:
					fields := value.NewScope()
					_ = fields.Set("v", value.String(text))
					f.manager.RunFrontMatter(&frontmatter.FrontMatter{Fields: fields}, newFakePage("p.html"))
				}
				g, s := f.depths()
				if g != wantGlobals || s != wantSources {
					return false
				}
			}
			return !f.manager.Globals().Has(SiteVar) && !f.manager.Globals().Has(PageVar)
		},
		gen.SliceOf(opGen), flagsGen, entryGen,
	))

	properties.TestingRun(t)
}
