package service

import "errors"

var (
	// ErrTemplateNotFound is returned when the referenced template does not exist.
	ErrTemplateNotFound = errors.New("pathway template not found")

	// ErrTemplateNotPublished is returned when instantiating a template that is
	// not in the published state.
	ErrTemplateNotPublished = errors.New("pathway template is not published")

	// ErrTemplateHasNoSteps is returned when a template cannot be instantiated
	// because it defines no steps.
	ErrTemplateHasNoSteps = errors.New("pathway template has no steps")

	// ErrInvalidTemplate is returned when a template's step graph is malformed.
	ErrInvalidTemplate = errors.New("pathway template is invalid")

	// ErrPathwayNotFound is returned when the referenced pathway does not exist.
	ErrPathwayNotFound = errors.New("patient pathway not found")

	// ErrPathwayNotActive is returned when advancing or cancelling a pathway
	// that is already completed or cancelled.
	ErrPathwayNotActive = errors.New("patient pathway is not active")

	// ErrStepMismatch is returned when the step submitted for completion is not
	// the pathway's current step.
	ErrStepMismatch = errors.New("step is not the pathway's current step")

	// ErrConcurrentModification is returned when another request advanced the
	// pathway between read and update.
	ErrConcurrentModification = errors.New("pathway was modified concurrently")

	// ErrPatientNotFound is returned when the referenced patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrStepNotInTemplate is returned when the referenced step does not belong
	// to the pathway's template.
	ErrStepNotInTemplate = errors.New("step does not belong to the pathway's template")

	// ErrAssignmentNotFound is returned when the referenced assignment does not exist.
	ErrAssignmentNotFound = errors.New("step assignment not found")

	// ErrAssignmentExists is returned when the step already has an assignment.
	ErrAssignmentExists = errors.New("step already has an assignment")
)
