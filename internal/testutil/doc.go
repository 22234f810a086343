// Package testutil provides testing utilities for minigram.
//
// This package is intended for internal testing only and should not be
// imported by external packages.
//
// # Mock Bot API server
//
// MockBotServer serves canned envelope replies and captures every request:
//
//	server := testutil.NewMockServer(t)
//	server.On("/bot"+testutil.TestToken+"/sendMessage", func(w http.ResponseWriter, r *http.Request) {
//	    testutil.ReplyMessage(w, 123)
//	})
//	// Use server.BaseURL() as the API base URL
//
// # Request capture
//
//	cap := server.LastCapture()
//	cap.AssertContentType(t, "application/json")
//	cap.AssertJSONField(t, "chat_id", float64(123))
package testutil
