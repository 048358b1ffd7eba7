// Package scorekit 是一个 IPL 比赛最终得分预测工具包。
//
// 设计要点：
// - Validate-first: 输入先过有序的校验规则（短路），非法输入不会到达模型
// - 输入契约固定: 球队 One-Hot + 5 个数值特征，布局见 feature.Layout，必须与模型训练时一致
// - 模型可插拔: 本地线性模型、自建 HTTP 服务、KServe、TF Serving 均实现 model.Regressor
//
// 使用示例：
//
//	svc, _ := predict.New(model.Func(myModel))
//	res, err := svc.PredictScore(ctx, scorekit.MatchState{...})
//	fmt.Println(res) // "160 to 170"
package scorekit

import (
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/predict"
)

// 轻量 facade：便于用户直接 import "scorekit" 使用核心类型。
type MatchState = core.MatchState
type PredictionResult = core.PredictionResult
type Team = core.Team
type Service = predict.Service

const ScoreMargin = core.ScoreMargin
