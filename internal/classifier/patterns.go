package classifier

import "regexp"

// scoredPattern is one entry in an intent's ordered regex list. Each match
// adds weight to that intent's score; scorePatterns adds a further 0.4 when
// the pattern consumes essentially the whole utterance.
type scoredPattern struct {
	re *regexp.Regexp
}

func p(expr string) scoredPattern {
	return scoredPattern{re: regexp.MustCompile(expr)}
}

// malicious is the fixed SQL/script/shell-injection blocklist, checked
// ahead of everything else. A hit is a hard MALICIOUS verdict at full
// confidence; no tool runs for the turn.
var malicious = []*regexp.Regexp{
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`--\s*$`),
	regexp.MustCompile(`(?i);\s*--`),
	regexp.MustCompile(`(?i)\bexec(ute)?\s*\(`),
	regexp.MustCompile(`(?i)insert\s+into`),
	regexp.MustCompile(`(?i)delete\s+from`),
}

// greeting, farewell, ... are the per-intent ordered pattern tables.
var greeting = []scoredPattern{
	p(`(?i)^\s*hi\b`), p(`(?i)^\s*hello\b`), p(`(?i)^\s*hey\b`),
	p(`(?i)good\s*(morning|afternoon|evening)`), p(`(?i)\bhowdy\b`),
	p(`(?i)\bgreetings\b`),
}

var farewell = []scoredPattern{
	p(`(?i)\bbye\b`), p(`(?i)\bgoodbye\b`), p(`(?i)\bsee\s*you\b`),
	p(`(?i)\bthat'?s\s*all\b`), p(`(?i)\bthanks?,?\s*bye\b`), p(`(?i)\btake\s*care\b`),
}

var productSearch = []scoredPattern{
	p(`(?i)\b(tumbler|mug|cup|bottle|flask)s?\b`),
	p(`(?i)\bshow\s*(me\s*)?(all\s*)?(products?|tumblers?|mugs?)\b`),
	p(`(?i)\b(stainless[- ]steel|ceramic|acrylic|glass)\b`),
	p(`(?i)\b(leak[- ]proof|dishwasher[- ]safe|microwave[- ]safe|double[- ]wall|screw[- ]on|car\s*cup\s*holder)\b`),
	p(`(?i)\bcheapest\b`), p(`(?i)\bmost\s*expensive\b`),
	p(`(?i)\b(under|below|less\s*than|above|over|more\s*than|between)\b.*\d`),
	p(`(?i)\bcollection\b`),
}

var outletSearch = []scoredPattern{
	p(`(?i)\boutlets?\b`), p(`(?i)\bstores?\b`), p(`(?i)\bbranch(es)?\b`),
	p(`(?i)\bdine[- ]in\b`), p(`(?i)\btakeaway\b`), p(`(?i)\bdelivery\b`),
	p(`(?i)\bdrive[- ]thru\b`), p(`(?i)\bwifi\b`), p(`(?i)\b24[- ]hour\b`),
	p(`(?i)\bnear\s*me\b`), p(`(?i)\bin\s*(kl|pj|petaling\s*jaya|kuala\s*lumpur|penang|johor)\b`),
	p(`(?i)\blocation\b`),
}

var calculationPatterns = []scoredPattern{
	p(`(?i)\d+\s*%\s*discount`), p(`(?i)total\s*for\s*\d`), p(`(?i)\d+\s*units?\s*of`),
	p(`(?i)\bsst\b`), p(`(?i)\d+\s*%\s*of\s*\d`), p(`(?i)square\s*root`), p(`(?i)sqrt\(`),
	p(`(?i)to\s*the\s*power\s*of`), p(`(?i)\bcalculate\b`), p(`(?i)\bhow\s*much\s*is\b`),
	p(`(?i)\bsplit\b.*\d`), p(`(?i)\baverage\s*of\b.*\d`), p(`(?i)\badd\s*up\b.*\d`),
	p(`(?i)\bsum\s*(of)?\b.*\d`),
	p(`[0-9]\s*[+\-*/]\s*[0-9]`),
}

var promotionInquiry = []scoredPattern{
	p(`(?i)\bpromo(tion)?s?\b`), p(`(?i)\bdiscounts?\b`), p(`(?i)\bsale\b`), p(`(?i)\bdeals?\b`),
	p(`(?i)\bon\s*sale\b`), p(`(?i)\bany\s*offers?\b`),
}

var contextRecall = []scoredPattern{
	p(`(?i)\bearlier\b`), p(`(?i)\bback\s*to\b`), p(`(?i)\bbefore\b`),
	p(`(?i)\bprevious(ly)?\b`), p(`(?i)\bwhat\s*(did|was)\s*i\b`), p(`(?i)\byou\s*mentioned\b`),
}

var about = []scoredPattern{
	p(`(?i)\bwho\s*are\s*you\b`), p(`(?i)\bwhat\s*(is|are)\s*zus\b`),
	p(`(?i)\btell\s*me\s*about\s*(yourself|zus)\b`), p(`(?i)\bwhat\s*can\s*you\s*do\b`),
	p(`(?i)\babout\s*zus\s*coffee\b`),
}

// pronounFollowUp matches a bare pronoun referring back to a prior result.
var pronounFollowUp = regexp.MustCompile(`(?i)\b(they|them|it|those)\b`)

// serviceOrTimeKeyword matches an outlet service or time-query keyword,
// used by the context-aware follow-up boost.
var serviceOrTimeKeyword = regexp.MustCompile(`(?i)\b(dine[- ]in|takeaway|delivery|drive[- ]thru|wifi|24[- ]hour|open|close|hours?)\b`)

// productKeyword matches a product-domain keyword, the symmetric half of
// the follow-up boost for PRODUCT_SEARCH.
var productKeyword = regexp.MustCompile(`(?i)\b(cheap|price|material|color|feature|size)\b`)
