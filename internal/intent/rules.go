package intent

import (
	"fmt"
	"regexp"
	"strings"

	"eassistant/internal/types"
)

// rule maps one intent to its trigger patterns. Patterns run against
// the lowercased, trimmed input, so they carry no case flags.
type rule struct {
	intent     types.Intent
	confidence float64
	patterns   []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// rules is scanned in a fixed order so ties resolve the same way on
// every run. Save patterns outscore load patterns because inputs like
// "save the reply to notes.txt" would otherwise match the file-loading
// rules too.
var rules = []rule{
	{
		intent:     types.IntentLoadEmail,
		confidence: 0.9,
		patterns: compile(
			`here.s an email`,
			`here is an email`,
			`process this email`,
			`i have an email`,
			`can you help with this email`,
			`process.*email`,
			`load.*email`,
			`analyze.*email`,
			`^process:\s*`,
			`process:\s*from:`,
			`from:.*to:.*subject:`,
			`subject:.*from:`,
			`from:.*\n.*to:.*\n.*subject:`,
			`from:.*\n.*subject:.*\n.*to:`,
			`to:.*\n.*from:.*\n.*subject:`,
			`dear.*sincerely|regards|best`,
			`^from:\s*\S+@\S+`,
			`^to:\s*\S+@\S+`,
			`^subject:`,
			`process.*file`,
			`load.*file`,
			`analyze.*file`,
			`help with.*file`,
			`here.s.*file`,
			`(?:process|load|analyze|open|read).*\.(pdf|txt|doc|docx|eml)`,
		),
	},
	{
		intent:     types.IntentDraftReply,
		confidence: 0.85,
		patterns: compile(
			`draft.*reply`,
			`write.*response`,
			`help.*respond`,
			`need to reply`,
			`create.*reply`,
			`compose.*response`,
			`draft.*email`,
			`create.*draft`,
			`try.*draft`,
			`draft.*again`,
			`try.*drafting`,
			`draft.*retry`,
			`retry.*draft`,
			`^try again$`,
			`^try again[!.]*$`,
			`^retry$`,
			`^retry[!.]*$`,
			`try.*draft.*again`,
			`one more try.*draft`,
			`help me draft`,
			`please draft`,
			`one more try`,
			`give.*one more try`,
			`draft.*professional.*response`,
			`write.*professional.*reply`,
			`respond.*professionally`,
			`professional.*response`,
			`draft.*acknowledging`,
			`write.*acknowledging`,
			`compose.*acknowledging`,
			`acknowledging.*response`,
			`acknowledgment.*response`,
		),
	},
	{
		intent:     types.IntentRefineDraft,
		confidence: 0.8,
		patterns: compile(
			`make it more (formal|casual|professional|friendly|polite|concise)`,
			`make it (formal|casual|professional|friendly|polite|concise)`,
			`change.*tone`,
			`revise.*draft`,
			`refine.*draft`,
			`refine\s+\d+`,
			`improve.*reply`,
			`make it (shorter|longer|more concise)`,
			`add.*meeting`,
			`include.*availability`,
			`more (professional|formal)`,
			`be more (polite|formal|casual|professional)`,
			`add.*acknowledgment`,
			`offer.*schedule`,
			`schedule.*meeting`,
			`add.*satisfaction`,
			`add.*commitments`,
			`add.*support`,
			`include.*support`,
			`add.*specific.*details`,
			`include.*specific.*details`,
			`add.*timeline`,
			`include.*timeline`,
			`add.*next.*steps`,
			`include.*next.*steps`,
			`add.*action.*items`,
			`include.*action.*items`,
			`make.*more.*specific`,
			`be.*more.*specific`,
			`add.*more.*detail`,
			`include.*more.*detail`,
			`expand.*on`,
			`elaborate.*on`,
			`add.*contact.*info`,
			`include.*contact.*info`,
			`add.*my.*contact`,
			`include.*my.*contact`,
			`add.*phone.*number`,
			`include.*phone.*number`,
			`add.*email.*address`,
			`include.*email.*address`,
			`add.*signature`,
			`include.*signature`,
			`add.*request`,
			`include.*request`,
			`add.*question`,
			`include.*question`,
			`that.s too (formal|casual|professional|friendly|polite|concise)`,
			`too (formal|casual|professional|friendly|polite|concise)`,
			`make it more (casual|enthusiastic|friendly|warm|personal)`,
			`make it sound more (enthusiastic|friendly|warm|personal|professional)`,
			`add more details about`,
			`include more details about`,
			`add more information about`,
			`include more information about`,
			`remove.*jargon`,
			`remove.*technical`,
			`take out.*jargon`,
			`take out.*technical`,
			`less.*jargon`,
			`less.*technical`,
			`simpler.*language`,
			`plain.*language`,
			`make.*simpler`,
			`make.*clearer`,
		),
	},
	{
		intent:     types.IntentSaveDraft,
		confidence: 0.95,
		patterns: compile(
			`^save$`,
			`save.*draft`,
			`save.*reply`,
			`export.*file`,
			`keep.*draft`,
			`save it`,
			`save this`,
			`save.*cloud`,
			`save.*s3`,
			`save.*aws`,
			`save.*locally`,
			`save to cloud`,
			`save to s3`,
			`save locally`,
			`save to file`,
			`save in.*cloud`,
			`cloud.*storage`,
			`upload.*draft`,
			`upload.*cloud`,
			`save\s+to\s+.*\.(txt|doc|docx|pdf|eml)`,
			`save\s+as\s+.*\.(txt|doc|docx|pdf|eml)`,
			`filepath?\s*:\s*.*\.(txt|doc|docx|pdf|eml)`,
			`path\s*:\s*.*\.(txt|doc|docx|pdf|eml)`,
			`save\s+to\s+/[\w/.-]+`,
		),
	},
	{
		intent:     types.IntentExtractInfo,
		confidence: 0.8,
		patterns: compile(
			`what are.*key details`,
			`show.*summary`,
			`extract.*information`,
			`who sent.*email`,
			`what.s.*about`,
			`key information`,
			`^summary$`,
			`show.*info`,
			`key.*details`,
			`what.*summary`,
			`try.*extract.*again`,
			`extract.*again`,
			`try.*information.*again`,
			`what was.*asking for`,
			`what did.*want`,
			`what was.*requesting`,
			`what does.*need`,
			`what is.*about`,
			`who is.*from`,
			`when.*need.*by`,
			`when.*deadline`,
			`when.*due`,
			`what.*deadline`,
			`remind me.*about`,
			`tell me.*about`,
			`what.*again`,
			`who.*again`,
			`when.*again`,
			`what.*subject`,
			`what.*sender`,
			`what.*from`,
		),
	},
	{
		intent:     types.IntentGeneralHelp,
		confidence: 0.9,
		patterns: compile(
			`^help$`,
			`^what can you do`,
			`how does this work`,
			`what are your capabilities`,
			`how do i`,
			`explain`,
		),
	},
	{
		intent:     types.IntentContinueWorkflow,
		confidence: 0.7,
		patterns: compile(
			`^yes[!.]*$`,
			`^ok[!.]*$`,
			`^okay[!.]*$`,
			`^continue[!.]*$`,
			`^proceed[!.]*$`,
			`^next[!.]*$`,
			`^go ahead[!.]*$`,
			`sounds good`,
			`that works`,
			`please do`,
			`go for it`,
			`^sure[!.]*$`,
			`^do it[!.]*$`,
		),
	},
	{
		intent:     types.IntentDeclineOffer,
		confidence: 0.7,
		patterns: compile(
			`^no[!.]*$`,
			`^nope[!.]*$`,
			`^not now[!.]*$`,
			`^not yet[!.]*$`,
			`^skip[!.]*$`,
			`^skip that[!.]*$`,
			`^skip it[!.]*$`,
			`^no thanks[!.]*$`,
			`^no thank you[!.]*$`,
			`not right now`,
			`maybe later`,
			`not interested`,
			`^pass[!.]*$`,
		),
	},
	{
		intent:     types.IntentViewSessionHistory,
		confidence: 0.85,
		patterns: compile(
			`show.*history`,
			`view.*history`,
			`list.*emails`,
			`show.*sessions`,
			`view.*sessions`,
			`what.*emails.*processed`,
			`show.*previous.*emails`,
			`list.*previous.*emails`,
			`session.*history`,
			`email.*history`,
			`show.*all.*emails`,
			`view.*all.*emails`,
		),
	},
	{
		intent:     types.IntentViewSpecificSession,
		confidence: 0.9,
		patterns: compile(
			`show.*email.*\d+`,
			`view.*email.*\d+`,
			`show.*session.*\d+`,
			`view.*session.*\d+`,
			`show.*draft.*from.*email.*\d+`,
			`show.*info.*from.*email.*\d+`,
		),
	},
}

// contextBoosts raises the confidence of the intents a user most
// likely means in each state, so short follow-ups resolve without a
// model call.
var contextBoosts = map[types.State]map[types.Intent]float64{
	types.StateEmailLoaded: {
		types.IntentDraftReply:  0.1,
		types.IntentExtractInfo: 0.1,
	},
	types.StateInfoExtracted: {
		types.IntentDraftReply: 0.15,
	},
	types.StateDraftCreated: {
		types.IntentSaveDraft:   0.1,
		types.IntentRefineDraft: 0.1,
	},
	types.StateDraftRefined: {
		types.IntentSaveDraft: 0.15,
	},
	types.StateErrorRecovery: {
		types.IntentDraftReply:  0.2,
		types.IntentExtractInfo: 0.1,
		types.IntentSaveDraft:   0.1,
	},
}

// Bare confirmations and refusals are near-certain when the assistant
// just offered a next step.
var (
	yesWords = map[string]bool{
		"yes": true, "ok": true, "okay": true, "continue": true,
		"proceed": true, "sure": true, "please do": true,
		"go for it": true, "do it": true,
	}
	noWords = map[string]bool{
		"no": true, "nope": true, "not now": true, "not yet": true,
		"skip": true, "skip that": true, "skip it": true,
		"no thanks": true, "no thank you": true, "pass": true,
	}
)

// matchRules scores the input against every rule table and returns the
// strongest classification. Confidence 0 with the clarification intent
// means nothing matched.
func matchRules(input string, state types.State) types.Classification {
	lower := strings.ToLower(strings.TrimSpace(input))

	best := types.IntentClarificationNeeded
	bestConf := 0.0
	for _, r := range rules {
		conf := 0.0
		for _, re := range r.patterns {
			if re.MatchString(lower) {
				conf = r.confidence
				break
			}
		}
		if adj := adjustForContext(r.intent, conf, lower, state); adj > conf {
			conf = adj
		}
		if conf > bestConf {
			bestConf = conf
			best = r.intent
		}
	}

	cl := types.Classification{
		Intent:     best,
		Confidence: bestConf,
		Method:     types.MethodRules,
		Reasoning:  fmt.Sprintf("rule match with confidence %.2f", bestConf),
	}
	if bestConf == 0 {
		cl.Reasoning = "no rule matched"
	}
	cl.Params = extractParams(input, lower)
	return cl
}

// adjustForContext applies state-dependent confidence adjustments.
func adjustForContext(it types.Intent, conf float64, lower string, state types.State) float64 {
	boosts, ok := contextBoosts[state]
	if !ok {
		return conf
	}
	if yesWords[lower] && it == types.IntentContinueWorkflow {
		return 0.95
	}
	if noWords[lower] && it == types.IntentDeclineOffer {
		return 0.95
	}
	if b, ok := boosts[it]; ok && conf > 0 {
		conf += b
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
