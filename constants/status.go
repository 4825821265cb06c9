package constants

// PipelineState enumerates the comparison pipeline's state machine.
type PipelineState string

const (
	StateInit              PipelineState = "INIT"
	StateValidatingInput   PipelineState = "VALIDATING_INPUT"
	StateExtractingText    PipelineState = "EXTRACTING_TEXT"
	StateContextualizing   PipelineState = "CONTEXTUALIZING"
	StateExtractingChanges PipelineState = "EXTRACTING_CHANGES"
	StateValidatingOutput  PipelineState = "VALIDATING_OUTPUT"
	StateDone              PipelineState = "DONE"
	StateFailed            PipelineState = "FAILED"
)

// Step names recorded in processing metadata as each stage completes.
const (
	StepInputValidation  = "input_validation"
	StepImageParsing     = "image_parsing"
	StepContextualize    = "contextualization"
	StepChangeExtraction = "change_extraction"
	StepOutputValidation = "output_validation"
)

// ParsingMethod tags recorded alongside decoded or reconstructed model output.
const (
	ParsingMethodJSON     = "json"
	ParsingMethodFallback = "fallback"
	ParsingMethodRawText  = "raw_text"
)
