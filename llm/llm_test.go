package llm

import "testing"

func TestMessageConstructors(t *testing.T) {
	cases := []struct {
		got      Message
		wantRole string
	}{
		{System("persona"), RoleSystem},
		{User("hello"), RoleUser},
		{Assistant("hi there"), RoleAssistant},
	}
	for _, tc := range cases {
		if tc.got.Role != tc.wantRole {
			t.Errorf("role = %q, want %q", tc.got.Role, tc.wantRole)
		}
		if tc.got.Content == "" {
			t.Error("content lost")
		}
	}
}

func TestUsageDefaultsToZero(t *testing.T) {
	u := Usage{}
	if u.InputTokens != 0 || u.OutputTokens != 0 || u.TotalTokens != 0 {
		t.Errorf("zero value Usage = %+v", u)
	}
}
