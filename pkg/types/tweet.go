// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the peril-crawler pipeline.
package types

import (
	"encoding/json"
	"time"
)

// TwitterTimeLayout is the createdAt format returned by the search API
// (e.g. "Mon Jul 28 17:12:07 +0000 2025").
const TwitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Tweet is a single search hit. The typed fields are the ones the crawler
// reads; Raw keeps the full API object so nothing is lost on output.
type Tweet struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`

	Author TweetAuthor `json:"author"`

	RetweetCount int `json:"retweetCount"`
	ReplyCount   int `json:"replyCount"`
	LikeCount    int `json:"likeCount"`

	// SearchQuery is the combination that found this tweet; it identifies
	// the state and peril downstream.
	SearchQuery string `json:"search_query"`

	Raw json.RawMessage `json:"-"`
}

// TweetAuthor is the subset of the author object the crawler keeps.
type TweetAuthor struct {
	UserName string `json:"userName"`
	Name     string `json:"name"`
}

// Created parses CreatedAt. The zero time is returned when the field is
// empty or not in TwitterTimeLayout.
func (t Tweet) Created() time.Time {
	ts, err := time.Parse(TwitterTimeLayout, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// MarshalJSON writes the raw API object with search_query merged in, or
// the typed fields when no raw object is present.
func (t Tweet) MarshalJSON() ([]byte, error) {
	type plain Tweet
	if len(t.Raw) == 0 {
		return json.Marshal(plain(t))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(t.Raw, &obj); err != nil {
		return json.Marshal(plain(t))
	}
	q, err := json.Marshal(t.SearchQuery)
	if err != nil {
		return nil, err
	}
	obj["search_query"] = q
	return json.Marshal(obj)
}

// UnmarshalJSON decodes the typed fields and retains the raw object.
func (t *Tweet) UnmarshalJSON(data []byte) error {
	type plain Tweet
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = Tweet(p)
	t.Raw = append(json.RawMessage(nil), data...)
	return nil
}
