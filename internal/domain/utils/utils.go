package utils

import tele "gopkg.in/telebot.v3"

// GetMessageText returns the text of a message or the caption of a media message.
func GetMessageText(msg *tele.Message) string {
	switch {
	case msg == nil:
		return ""
	case msg.Text != "":
		return msg.Text
	case msg.Caption != "":
		return msg.Caption
	default:
		return ""
	}
}
