package model

import "time"

// Snippet is a published piece of code.
//
// UserName is copied from the owner's User record when the snippet is
// created and is not refreshed if the owner is later renamed.
type Snippet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

// StarStatus is the star state of one snippet as seen by one caller.
type StarStatus struct {
	SnippetID string `json:"snippetId"`
	Starred   bool   `json:"starred"`
	Count     int    `json:"count"`
}

// Comment is a free-text note attached to a snippet.
type Comment struct {
	ID        string    `json:"id"`
	SnippetID string    `json:"snippetId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
