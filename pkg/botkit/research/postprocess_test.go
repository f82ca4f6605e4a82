package research

import "testing"

func TestRenumberLists(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "repeated ones become sequential",
			in:   "1. 계정 설정을 엽니다\n1. 출금 메뉴를 선택합니다\n1. 금액을 입력합니다",
			want: "1. 계정 설정을 엽니다\n2. 출금 메뉴를 선택합니다\n3. 금액을 입력합니다",
		},
		{
			name: "arbitrary numbering is normalized",
			in:   "3. first\n7. second\n2. third",
			want: "1. first\n2. second\n3. third",
		},
		{
			name: "blank line resets the counter",
			in:   "1. a\n2. b\n\n5. c\n6. d",
			want: "1. a\n2. b\n\n1. c\n2. d",
		},
		{
			name: "horizontal rule resets the counter",
			in:   "1. a\n2. b\n---\n4. c",
			want: "1. a\n2. b\n---\n1. c",
		},
		{
			name: "double rule resets the counter",
			in:   "1. a\n===\n9. b",
			want: "1. a\n===\n1. b",
		},
		{
			name: "prose between items keeps counting",
			in:   "1. a\nsome explanation\n5. b",
			want: "1. a\nsome explanation\n2. b",
		},
		{
			name: "indented numbering untouched",
			in:   "1. a\n  1. nested\n1. b",
			want: "1. a\n  1. nested\n2. b",
		},
		{
			name: "no list passes through",
			in:   "출금은 보통 10분 내에 처리됩니다.",
			want: "출금은 보통 10분 내에 처리됩니다.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenumberLists(tt.in); got != tt.want {
				t.Errorf("RenumberLists() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestStripStructuredFragments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "planning fragment removed",
			in:   `출금 수수료는 다음과 같습니다. {"search_queries": ["fee"], "priority": 1} 자세한 내용은 공지를 참고하세요.`,
			want: "출금 수수료는 다음과 같습니다.  자세한 내용은 공지를 참고하세요.",
		},
		{
			name: "grading fragment removed",
			in:   `답변입니다. {"is_sufficient": true, "score": 0.9}`,
			want: "답변입니다. ",
		},
		{
			name: "nested fragment removed in one piece",
			in:   `before {"research_plan": {"queries": ["a"]}} after`,
			want: "before  after",
		},
		{
			name: "multiple fragments all removed",
			in:   `a {"grader_score": 1} b {"question_type": "FAQ"} c`,
			want: "a  b  c",
		},
		{
			name: "ordinary braces kept",
			in:   "설정 예시: {timeout: 30}",
			want: "설정 예시: {timeout: 30}",
		},
		{
			name: "unbalanced brace kept",
			in:   `broken {"is_sufficient": true`,
			want: `broken {"is_sufficient": true`,
		},
		{
			name: "stray brace does not shadow later fragment",
			in:   `안내 { 드립니다 {"search_queries": ["fee"]} 끝`,
			want: `안내 { 드립니다  끝`,
		},
		{
			name: "triple blank collapsed",
			in:   "a\n\n\n\nb",
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripStructuredFragments(tt.in); got != tt.want {
				t.Errorf("StripStructuredFragments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostProcessTrimsAndCombines(t *testing.T) {
	in := "\n\n1. step\n1. step two\n{\"missing_information\": \"none\"}\n"
	got := PostProcess(in)
	want := "1. step\n2. step two"
	if got != want {
		t.Errorf("PostProcess() = %q, want %q", got, want)
	}
}

func TestContainsApologyMarker(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"죄송합니다. 정보를 찾지 못했습니다.", true},
		{"Sorry, I could not find that.", true},
		{"요청하신 정보를 찾을 수 없습니다.", true},
		{"출금 수수료는 1,000원입니다.", false},
	}

	for _, tt := range tests {
		if got := containsApologyMarker(tt.in); got != tt.want {
			t.Errorf("containsApologyMarker(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
