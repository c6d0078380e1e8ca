// Package errors is the error vocabulary of the advancement engine.
//
// Repositories and engines return *Error values with a Code; callers above
// them add context with Wrap and keep the code, so a missing character is
// still IsNotFound after the orchestrator has wrapped it twice.
//
// Codes callers act on:
//
//	NotFound              character, class, mapping or pending offer absent
//	InvalidArgument       bad input, including config validation
//	FailedPrecondition    InvalidState: the character's current class forbids the action
//	RequirementsNotMet    Meta[MetaMissing] holds *entities.MissingRequirements
//	NoAdvancementPath     no mapping connects the classes
//	Aborted, Unavailable  transient, see IsRetryable
package errors
