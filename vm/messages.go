package vm

// Message keys understood by a Catalog. The VM never formats user-facing
// text itself; it hands a key and positional arguments to the catalog.
const (
	// Diagnostic headers: (line, message)
	MsgErrorHeader   = "ErrorHeader"
	MsgWarningHeader = "WarningHeader"
	MsgFatalHeader   = "FatalHeader"

	// Trailers appended after fatal errors
	MsgCannotContinue = "CannotContinue"
	MsgImmediateExit  = "ImmediateExit"

	// Status
	MsgProgramDone   = "ProgramDone"
	MsgProgramAbort  = "ProgramAbort"
	MsgProgramFailed = "ProgramFailed"

	// Control flow
	MsgReturnWithoutGosub    = "ReturnWithoutGosub"
	MsgReturnValueOutsideSub = "ReturnValueOutsideSub"
	MsgGosubPendingAtEndSub  = "GosubPendingAtEndSub"
	MsgLabelNotFound         = "LabelNotFound"
	MsgStackOverflow         = "StackOverflow"

	// Subroutines
	MsgSubNotDefined    = "SubNotDefined"
	MsgTooManyArguments = "TooManyArguments"
	MsgArgumentType     = "ArgumentType"
	MsgNotAnArray       = "NotAnArray"

	// Arithmetic and types
	MsgTypeMismatch   = "TypeMismatch"
	MsgDivisionByZero = "DivisionByZero"
	MsgBadArgument    = "BadArgument"
	MsgFormatError    = "FormatError"
	MsgStringTooLong  = "StringTooLong"

	// Arrays
	MsgTooManyDimensions   = "TooManyDimensions"
	MsgBadDimension        = "BadDimension"
	MsgArrayTooLarge       = "ArrayTooLarge"
	MsgDimCountChanged     = "DimCountChanged"
	MsgArrayShrink         = "ArrayShrink"
	MsgArrayNotDimensioned = "ArrayNotDimensioned"
	MsgWrongIndexCount     = "WrongIndexCount"
	MsgIndexOutOfRange     = "IndexOutOfRange"

	// DATA / READ
	MsgOutOfData        = "OutOfData"
	MsgReadTypeMismatch = "ReadTypeMismatch"

	// Graphics
	MsgNoWindow          = "NoWindow"
	MsgWindowAlreadyOpen = "WindowAlreadyOpen"
	MsgBadPaletteIndex   = "BadPaletteIndex"

	// Runtime compilation
	MsgCompileFailed = "CompileFailed"

	// Misc
	MsgUserError     = "UserError"
	MsgTooManyErrors = "TooManyErrors"
)
