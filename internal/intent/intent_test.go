package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/document"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"帮我评价一下这个页面", Evaluate},
		{"有什么建议吗", Evaluate},
		{"Please REVIEW this", Evaluate},
		{"优化产品介绍", RewriteDescription},
		{"帮我写一段吸引人的应用简介", RewriteDescription},
		{"improve the Description", RewriteDescription},
		{"改一下文案", RewriteDescription},
		{"生成功能列表", RegenerateFeatures},
		{"生成3个核心功能亮点", RegenerateFeatures},
		{"more Features please", RegenerateFeatures},
		{"换个名称", RewriteTagline},
		{"优化标题", RewriteTagline},
		{"better name", RewriteTagline},
		{"优化Slogan", RewriteTagline},
		{"你好", Help},
		{"", Help},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	// Earlier rules win when several keywords appear.
	assert.Equal(t, Evaluate, Classify("评价一下功能介绍和名称"))
	assert.Equal(t, RewriteDescription, Classify("功能介绍"))
	assert.Equal(t, RegenerateFeatures, Classify("feature name"))
	// "rename" contains "name".
	assert.Equal(t, RewriteTagline, Classify("rename it"))
}

func TestPlanWithoutPatches(t *testing.T) {
	for _, i := range []Intent{Evaluate, Help, "bogus"} {
		r := Plan(i)
		assert.False(t, r.Mutates())
		assert.NotEmpty(t, r.Message)
	}
	assert.Equal(t, Help, Plan("bogus").Intent)
}

func TestExecuteRegeneratesFeatures(t *testing.T) {
	tpl, err := catalog.Default().Get("feishu-change-management")
	require.NoError(t, err)
	d := tpl.NewDocument()
	require.Equal(t, "变更管理", d.AppInfo.Name)
	before := d.Clone()

	r, err := Execute(&d, "生成功能列表")
	require.NoError(t, err)
	assert.Equal(t, RegenerateFeatures, r.Intent)
	assert.Equal(t, "已为你生成了三个核心功能亮点，强调了自动化、报表和协作。", r.Message)

	require.Len(t, d.Tabs.Overview.Features, 3)
	assert.Equal(t, "Smart Automation", d.Tabs.Overview.Features[0].Title)
	assert.Equal(t, "Advanced Reporting", d.Tabs.Overview.Features[1].Title)
	assert.Equal(t, "Team Collaboration", d.Tabs.Overview.Features[2].Title)

	// Everything else is untouched.
	d.Tabs.Overview.Features = before.Tabs.Overview.Features
	assert.Equal(t, before, d)
}

func TestExecuteTaglineAndDescription(t *testing.T) {
	tpl, err := catalog.Default().Get("jira-time-tracker")
	require.NoError(t, err)
	d := tpl.NewDocument()

	_, err = Execute(&d, "优化Slogan")
	require.NoError(t, err)
	assert.Equal(t, "The #1 Rated App for Productivity and Team Success", d.AppInfo.Tagline)

	r, err := Execute(&d, "优化产品介绍")
	require.NoError(t, err)
	assert.Contains(t, d.Tabs.Overview.Summary, "Looking to streamline your workflow?")
	assert.Equal(t, replyDescription, r.Message)
}

func TestExecuteEvaluateDoesNotMutate(t *testing.T) {
	tpl, err := catalog.Default().Get("feishu-change-management")
	require.NoError(t, err)
	d := tpl.NewDocument()
	before := d.Clone()

	r, err := Execute(&d, "帮我评价一下这个页面")
	require.NoError(t, err)
	assert.Contains(t, r.Message, "详情页质量评估报告")
	assert.Equal(t, before, d)
}

func TestExecuteRejectedPatchLeavesDocument(t *testing.T) {
	d := document.Document{AppInfo: document.AppInfo{Rating: 42}}
	before := d.Clone()

	_, err := Execute(&d, "优化Slogan")
	require.Error(t, err)
	assert.Equal(t, before, d)
}
