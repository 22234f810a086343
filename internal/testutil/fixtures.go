package testutil

// Test constants for consistent test data.
const (
	// TestToken is a valid-format bot token for testing.
	TestToken = "123456789:ABCdefGHIjklMNOpqrsTUVwxyz"

	// TestChatID is a test chat ID.
	TestChatID = int64(123456789)

	// TestUserID is a test user ID.
	TestUserID = int64(987654321)

	// TestBotID is a test bot ID.
	TestBotID = int64(123456789)

	// TestBotUsername is a test bot username.
	TestBotUsername = "testbot"
)

// MessageUpdate returns a decoded message update fixture.
func MessageUpdate(updateID int64, text string) map[string]any {
	return map[string]any{
		"update_id": updateID,
		"message": map[string]any{
			"message_id": 1,
			"date":       1234567890,
			"text":       text,
			"chat": map[string]any{
				"id":   TestChatID,
				"type": "private",
			},
			"from": map[string]any{
				"id":         TestUserID,
				"first_name": "Test",
			},
		},
	}
}

// CommandUpdate returns a message update carrying a bot_command entity.
func CommandUpdate(updateID int64, text string, cmdLen int) map[string]any {
	u := MessageUpdate(updateID, text)
	u["message"].(map[string]any)["entities"] = []any{
		map[string]any{"type": "bot_command", "offset": 0, "length": cmdLen},
	}
	return u
}

// CallbackUpdate returns an update fixture with a callback query.
func CallbackUpdate(updateID int64, queryID, data string) map[string]any {
	return map[string]any{
		"update_id": updateID,
		"callback_query": map[string]any{
			"id":   queryID,
			"data": data,
			"from": map[string]any{
				"id":         TestUserID,
				"first_name": "Test",
			},
			"message": map[string]any{
				"message_id": 1,
				"chat": map[string]any{
					"id":   TestChatID,
					"type": "private",
				},
			},
		},
	}
}
