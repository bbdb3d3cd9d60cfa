package llm

// Prompt templates for the email operations. Extraction names the
// fields so the model answers with a predictable JSON object.
const (
	summarizePrefix = "Summarize the following email exchange in 2-3 sentences:\n\n"
	extractPrefix   = "Extract the key information: sender name, receiver name, sender contact details, receiver contact details, subject, summary (2-3 sentences), in JSON format, from the following email exchange:\n\n"
	draftTemplate   = "Draft a reply to the following email exchange%s:\n\n"
	refineTemplate  = "Refine the following draft reply based on these instructions and the subsequent summary: %s\n\nDraft:\n%s\n\nSummary:\n%s"
)
