package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, KeyGenericError, "Something went wrong, please try again")
	message.SetString(lang, KeyUnauthorized, "Please sign in")
	message.SetString(lang, KeyForbidden, "You are not allowed to do this")
	message.SetString(lang, KeyLoginRequired, "Please sign in before registering for this camp")
	message.SetString(lang, KeyInvalidInput, "Invalid input")
	message.SetString(lang, KeyCampNotFound, "Camp not found")
	message.SetString(lang, KeyRegNotFound, "Registration not found")
	message.SetString(lang, KeyNotFound, "Not found")
	message.SetString(lang, KeySlugTaken, "This camp URL is already taken")
	message.SetString(lang, KeyUploadFailed, "File upload failed")
	message.SetString(lang, KeyLoginFailed, "Sign in failed")
	message.SetString(lang, KeyUnknownAuth, "Unsupported sign in provider")
	message.SetString(lang, KeyInvalidState, "Sign in expired, please try again")
	message.SetString(lang, KeyHasAccepted, "Camps with accepted registrations cannot be deleted")
	message.SetString(lang, KeyInvalidStatus, "Invalid status")
	message.SetString(lang, KeyInvalidMove, "Cannot change status from %s to %s")
	message.SetString(lang, KeyInvalidPayment, "Cannot change payment status from %s to %s")
	message.SetString(lang, KeyConflict, "This registration was just changed by someone else, please reload")

	message.SetString(lang, KeyFieldRequired, "%s is required")
	message.SetString(lang, KeyUnknownFaculty, "Unknown faculty")
	message.SetString(lang, KeyEndBeforeStart, "The camp cannot end before it starts")
	message.SetString(lang, KeyRegEndBeforeReg, "Registration cannot close before it opens")
	message.SetString(lang, KeyFileCount, "Upload between 1 and %d files")
	message.SetString(lang, KeyFileTooLarge, "Files must be at most %d MB")
	message.SetString(lang, KeyBannerInvalid, "An image of at most %d MB is required")
	message.SetString(lang, KeyFormKeyRequired, "Every field needs a key")
	message.SetString(lang, KeyFormKeyDup, "Field key %s is used more than once")

	message.SetString(lang, KeyWindowUpcoming, "Registration has not opened yet")
	message.SetString(lang, KeyWindowClosed, "Registration is closed")
	message.SetString(lang, KeyWindowEnded, "The camp has already started")
	message.SetString(lang, KeyWindowFull, "The camp is full")
	message.SetString(lang, KeyAlreadyRegistered, "You have already registered for this camp")

	message.SetString(lang, KeyRegistered, "Registration submitted")
	message.SetString(lang, KeyStatusUpdated, "Status updated")
	message.SetString(lang, KeyPaymentUpdated, "Payment status updated")
	message.SetString(lang, KeyCampCreated, "Camp published")
	message.SetString(lang, KeyDraftSaved, "Draft saved")
	message.SetString(lang, KeyCampUpdated, "Camp updated")
	message.SetString(lang, KeyCampDeleted, "Camp deleted")
	message.SetString(lang, KeyFormSaved, "Registration form saved")
	message.SetString(lang, KeyFilesUploaded, "Files uploaded")
	message.SetString(lang, KeyLoggedOut, "Signed out")
	message.SetString(lang, KeyRecounted, "Participants recounted: %d")
}
