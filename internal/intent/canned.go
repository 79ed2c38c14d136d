package intent

import "github.com/ziadkadry99/onepage/internal/document"

// Greeting opens every conversation.
const Greeting = "你好！我是你的智能设计助手。我可以帮你撰写专业的应用市场介绍文案。\n\n请告诉我：\n1. 你的应用主要解决什么问题？\n2. 目标用户是谁？\n3. 有什么核心功能亮点？"

// Hints are the quick prompts offered under the chat input.
var Hints = []string{"帮我写一段吸引人的应用简介", "生成3个核心功能亮点", "优化Slogan"}

const critiqueReport = "🔍 **详情页质量评估报告**\n\n" +
	"1. **标题吸引力 (8/10)**: 标题清晰，但建议加入核心价值点，例如\"变更管理 - 提升项目审批效率 30%\"。\n" +
	"2. **视觉丰富度 (6/10)**: 截图数量不足，建议添加展示\"配置流程\"的动图。\n" +
	"3. **信任感 (7/10)**: 已有官方认证，但缺少客户证言或具体的数据案例。\n\n" +
	"💡 **改进建议**: 尝试添加一段关于\"如何帮助团队减少沟通成本\"的具体描述。"

const highConversionSummary = "Looking to streamline your workflow? Our app provides the ultimate solution for teams of all sizes.\n\n" +
	"### Why choose us?\n\n" +
	"* **Seamless Integration**: Connects instantly with your existing tools.\n" +
	"* **Real-time Analytics**: Make data-driven decisions with our advanced dashboard.\n" +
	"* **Secure & Reliable**: Enterprise-grade security to keep your data safe.\n\n" +
	"Start your free trial today and experience the difference."

var generatedFeatures = []document.Feature{
	{Title: "Smart Automation", Description: "Save time by automating repetitive tasks with our drag-and-drop builder."},
	{Title: "Advanced Reporting", Description: "Gain insights with customizable reports and export options."},
	{Title: "Team Collaboration", Description: "Comment, tag, and share updates in real-time."},
}

const generatedTagline = "The #1 Rated App for Productivity and Team Success"

const (
	replyDescription = "已为你生成了一段通用的高转化应用介绍。你可以根据具体功能再微调。"
	replyFeatures    = "已为你生成了三个核心功能亮点，强调了自动化、报表和协作。"
	replyTagline     = "已优化了应用的 Slogan，使其更具吸引力。"
	capabilityMenu   = "我是你的详情页撰写专家。我可以帮你：\n\n" +
		"1. **评价当前页面**：发送'帮我评价一下这个页面'。\n" +
		"2. **撰写高转化文案**：发送'优化产品介绍'。\n" +
		"3. **生成功能亮点**：发送'生成功能列表'。"
)
