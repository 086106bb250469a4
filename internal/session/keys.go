package session

// Durable keys survive a restart.
const (
	KeySummary          = "summary"
	KeyChatHistory      = "chatHistory"
	KeyProcessingOption = "processingOption"
	KeyTheme            = "theme"
	KeyDocumentID       = "documentId"
	KeySessionInfo      = "sessionInfo"
)

// Tab-scoped keys live only as long as the running client.
const (
	KeyChatMessages  = "chatMessages"
	KeyPaperTopic    = "paperTopic"
	KeySummaryLength = "summaryLength"
	KeyUploadedFile  = "uploadedFile"
)

// TabKeys lists every tab-scoped key; a reset or new upload clears them all.
var TabKeys = []string{KeyChatMessages, KeyPaperTopic, KeySummaryLength, KeyUploadedFile}
