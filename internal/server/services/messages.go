package services

// Client-facing texts. Handlers pass them through unchanged.
const (
	MsgFieldRequired      = "All field must be filled."
	MsgFieldsRequired     = "All fields must be filled."
	MsgEmailRequired      = "Email-ID field must be filled."
	MsgInvalidEmail       = "Email-ID must be in valid format."
	MsgPasswordMismatch   = "Password & Confirm Password should be matched."
	MsgPasswordLength     = "Password must be between 8 and 256 characters."
	MsgNameLength         = "Name must be between 3 and 50 characters."
	MsgEmailExists        = "Email-ID is already exist, Please login."
	MsgInvalidCredentials = "Invalid Email-ID or Password."
	MsgWrongPassword      = "Please enter your right password."
	MsgSamePassword       = "old password and new password should not match."
	MsgUnknownEmail       = "Email-ID does not exist, Please register."
	MsgInvalidToken       = "Invalid or expired token, Please try again."
	MsgUnauthorized       = "Unauthorized access! Please login first."
	MsgInvalidSession     = "Invalid token! Please login first."
	MsgUserMissing        = "User is not logged in, Please login or does not exist."

	MsgTitleLength       = "Title must be at most 100 characters."
	MsgDescriptionLength = "Description must be at most 1000 characters."
	MsgInvalidStatus     = "Status must be either pending or completed."
	MsgTaskNotFound      = "Task not found with the specified ID."
)
