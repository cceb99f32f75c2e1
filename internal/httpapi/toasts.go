package httpapi

import "github.com/MarkoPoloResearchLab/portfolio/internal/console"

// Toast is a one-shot notification rendered on the next page.
type Toast struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Variant     console.Variant `json:"variant"`
}

const (
	toastTitleLoginSuccessful      = "Login Successful"
	toastTitleLoginFailed          = "Login Failed"
	toastTitleValidationError      = "Validation Error"
	toastTitleLoggedOut            = "Logged Out"
	toastTitleCredentialsVerified  = "Credentials Verified"
	toastTitleOwnerLoginSuccessful = "Owner Login Successful"
	toastTitleInvalidSecurityCode  = "Invalid Security Code"
	toastTitleSessionUnavailable   = "Session Unavailable"
	toastTitleLoginRequired        = "Login Required"
	toastTitleMessageSent          = "Message Sent"

	toastDescriptionVisitorWelcome     = "Welcome to the application"
	toastDescriptionAdminWelcome       = "Welcome to the admin dashboard"
	toastDescriptionOwnerWelcome       = "Welcome to the owner dashboard"
	toastDescriptionInvalidCredentials = "Invalid username or password"
	toastDescriptionRepeatedFailures   = "Multiple failed attempts detected. Please verify credentials."
	toastDescriptionMissingFields      = "Username and password are required"
	toastDescriptionEnterSecurityCode  = "Enter the 6-digit security code to continue"
	toastDescriptionSecurityCodeFormat = "The security code must be exactly 6 digits"
	toastDescriptionOwnerStepMissing   = "Sign in with the owner credentials first"
	toastDescriptionSessionUnavailable = "Your session could not be updated. Please try again."
	toastDescriptionVisitorLoggedOut   = "You have been logged out"
	toastDescriptionAdminLoggedOut     = "You have been logged out of the admin dashboard"
	toastDescriptionOwnerLoggedOut     = "You have been logged out of the owner dashboard"
	toastDescriptionLoginRequired      = "Log in before sending a message"
	toastDescriptionMessageSent        = "Message sent successfully! I'll be in touch soon."
	toastDescriptionContactUnreadable  = "The message could not be read. Please try again."
	repeatedFailedAdminLoginsThreshold = 3
)

func successToast(title string, description string) Toast {
	return Toast{Title: title, Description: description, Variant: console.VariantDefault}
}

func failureToast(title string, description string) Toast {
	return Toast{Title: title, Description: description, Variant: console.VariantDestructive}
}
