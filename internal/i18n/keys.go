package i18n

// Message keys.
const (
	KeyGenericError   = "error.generic"
	KeyUnauthorized   = "error.unauthorized"
	KeyForbidden      = "error.forbidden"
	KeyLoginRequired  = "error.login_required"
	KeyInvalidInput   = "error.invalid_input"
	KeyCampNotFound   = "error.camp_not_found"
	KeyRegNotFound    = "error.registration_not_found"
	KeyNotFound       = "error.not_found"
	KeySlugTaken      = "error.slug_taken"
	KeyUploadFailed   = "error.upload_failed"
	KeyLoginFailed    = "error.login_failed"
	KeyUnknownAuth    = "error.unknown_provider"
	KeyInvalidState   = "error.invalid_state"
	KeyHasAccepted    = "error.has_accepted"
	KeyInvalidStatus  = "error.invalid_status"
	KeyInvalidMove    = "error.invalid_transition"
	KeyInvalidPayment = "error.invalid_payment"
	KeyConflict       = "error.conflict"

	KeyFieldRequired   = "input.field_required"
	KeyUnknownFaculty  = "input.unknown_faculty"
	KeyEndBeforeStart  = "input.end_before_start"
	KeyRegEndBeforeReg = "input.registration_end_before_start"
	KeyFileCount       = "input.file_count"
	KeyFileTooLarge    = "input.file_too_large"
	KeyBannerInvalid   = "input.banner_invalid"
	KeyFormKeyRequired = "input.form_key_required"
	KeyFormKeyDup      = "input.form_key_duplicate"

	KeyWindowUpcoming    = "window.upcoming"
	KeyWindowClosed      = "window.closed"
	KeyWindowEnded       = "window.ended"
	KeyWindowFull        = "window.full"
	KeyAlreadyRegistered = "window.already_registered"

	KeyRegistered     = "ok.registered"
	KeyStatusUpdated  = "ok.status_updated"
	KeyPaymentUpdated = "ok.payment_updated"
	KeyCampCreated    = "ok.camp_created"
	KeyDraftSaved     = "ok.draft_saved"
	KeyCampUpdated    = "ok.camp_updated"
	KeyCampDeleted    = "ok.camp_deleted"
	KeyFormSaved      = "ok.form_saved"
	KeyFilesUploaded  = "ok.files_uploaded"
	KeyRecounted      = "ok.recounted"
	KeyLoggedOut      = "ok.logged_out"
)
