package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// ChatAllowList ignores updates from chats outside allowed. An empty list
// lets every chat through.
func ChatAllowList(allowed []int64, logger *zap.Logger) tele.MiddlewareFunc {
	set := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if len(set) == 0 {
				return next(c)
			}

			chat := c.Chat()
			if chat != nil {
				if _, ok := set[chat.ID]; ok {
					return next(c)
				}
			}

			var chatID int64
			if chat != nil {
				chatID = chat.ID
			}
			logger.Warn("Ignoring update from chat outside allow list", zap.Int64("chat_id", chatID))

			// Callbacks must be answered or the button keeps spinning
			if c.Callback() != nil {
				return c.Respond()
			}
			return nil
		}
	}
}

// Logger logs every update before it is handled
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			fields := []zap.Field{zap.Int("update_id", c.Update().ID)}
			if chat := c.Chat(); chat != nil {
				fields = append(fields, zap.Int64("chat_id", chat.ID))
			}
			if sender := c.Sender(); sender != nil {
				fields = append(fields,
					zap.Int64("user_id", sender.ID),
					zap.String("username", sender.Username),
				)
			}
			if callback := c.Callback(); callback != nil {
				fields = append(fields, zap.String("callback", callback.Unique))
			} else {
				fields = append(fields, zap.String("text", c.Text()))
			}
			logger.Debug("Update received", fields...)

			if err := next(c); err != nil {
				logger.Error("Handler failed", append(fields, zap.Error(err))...)
				return err
			}
			return nil
		}
	}
}
