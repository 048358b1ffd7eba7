package model

import "context"

// Regressor 是回归模型的最小抽象：输入一批特征向量，输出同样数量的预测值。
// 具体实现可以是本地模型（线性回归）或远程服务（RPC / KServe / TF Serving）。
//
// 预测服务只依赖此接口，测试时可以用桩模型替换真实模型产物。
type Regressor interface {
	Name() string
	Predict(ctx context.Context, instances [][]float64) ([]float64, error)
}

// HealthChecker 是可选接口，远程模型实现它以便 /health 探测。
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Closer 是可选接口，持有连接的模型实现它以便进程退出时释放资源。
type Closer interface {
	Close(ctx context.Context) error
}

// Func 把普通函数适配为 Regressor，便于测试与内嵌简单模型。
type Func func(ctx context.Context, instances [][]float64) ([]float64, error)

func (f Func) Name() string { return "func" }

func (f Func) Predict(ctx context.Context, instances [][]float64) ([]float64, error) {
	return f(ctx, instances)
}
