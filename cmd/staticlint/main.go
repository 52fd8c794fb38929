// Command staticlint запускает набор анализаторов проекта:
// проходы golang.org/x/tools, staticcheck, go-critic, errcheck и osexit.
//
// Запуск: go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/go-critic/go-critic/checkers/analyzer"
	"github.com/kisielk/errcheck/errcheck"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/sortslice"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// skippedStyleChecks проверки stylecheck, которые не подходят проекту:
// тексты ошибок валидации показываются пользователю как есть.
var skippedStyleChecks = map[string]bool{
	"ST1000": true, // комментарий пакета
	"ST1005": true, // регистр и пунктуация текста ошибки
}

func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		OsExitAnalyzer,

		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shift.Analyzer,
		sortslice.Analyzer,
		stdmethods.Analyzer,
		structtag.Analyzer,
		tests.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,

		analyzer.Analyzer,
		errcheck.Analyzer,
	}

	// все SA-проверки staticcheck
	checks = appendLint(checks, staticcheck.Analyzers, func(name string) bool {
		return strings.HasPrefix(name, "SA")
	})
	checks = appendLint(checks, simple.Analyzers, func(string) bool { return true })
	checks = appendLint(checks, stylecheck.Analyzers, func(name string) bool {
		return !skippedStyleChecks[name]
	})
	return checks
}

func appendLint(dst []*analysis.Analyzer, src []*lint.Analyzer, keep func(name string) bool) []*analysis.Analyzer {
	for _, a := range src {
		if keep(a.Analyzer.Name) {
			dst = append(dst, a.Analyzer)
		}
	}
	return dst
}

func main() {
	multichecker.Main(analyzers()...)
}
