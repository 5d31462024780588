package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")

	ErrChildNotFound     = errors.New("child not found")
	ErrMilestoneNotFound = errors.New("milestone not found")

	ErrCalendarNotFound = errors.New("calendar not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrNotOwner         = errors.New("only the calendar owner can do this")
	ErrReadOnly         = errors.New("calendar is shared with view permission only")
	ErrShareWithSelf    = errors.New("cannot share a calendar with its owner")
	ErrShareNotFound    = errors.New("calendar is not shared with this user")

	ErrContentNotFound = errors.New("content not found")

	ErrTopicNotFound   = errors.New("topic not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("only the author can do this")
	ErrReplyTooDeep    = errors.New("replies cannot be nested further")
)
