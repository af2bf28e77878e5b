package instagram

import (
	"strings"
	"unicode"
	"unicode/utf8"

	igerrors "igauth/pkg/errors"
)

// Comment limits enforced by the API.
const (
	MaxCommentLength   = 300
	MaxCommentHashtags = 4
	MaxCommentURLs     = 1
)

// ValidateComment rejects comments the API would refuse. Length is counted
// in characters. A comment is "all capitals" only if it has at least one
// letter and no lowercase letters, so digits and punctuation alone pass.
func ValidateComment(text string) error {
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return igerrors.InvalidParameter("the total length of the comment cannot exceed 300 characters")
	}
	if strings.Count(text, "#") > MaxCommentHashtags {
		return igerrors.InvalidParameter("the comment cannot contain more than 4 hashtags")
	}
	if strings.Count(text, "http://") > MaxCommentURLs {
		return igerrors.InvalidParameter("the comment cannot contain more than 1 URL")
	}
	if strings.IndexFunc(text, unicode.IsLetter) >= 0 && strings.ToUpper(text) == text {
		return igerrors.InvalidParameter("the comment cannot consist of all capital letters")
	}
	return nil
}
