package model

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// SVD 是用户 × 书籍评分矩阵的截断奇异值分解：
//
//	R ≈ (U_k·Σ_k)·V_kᵀ
//
// 用户因子已乘上奇异值，预测评分即用户因子与书籍因子的内积。
type SVD struct {
	users *mat.Dense // 用户数 × k
	items *mat.Dense // 书籍数 × k
}

// FitSVD 分解评分矩阵（行为用户，列为书籍，未评分为 0），保留前 components 个分量；
// components <= 0 或超过矩阵秩上限时保留全部。
func FitSVD(ratings *mat.Dense, components int) (*SVD, error) {
	if ratings == nil || ratings.IsEmpty() {
		return nil, errors.New("svd: empty rating matrix")
	}
	var svd mat.SVD
	if !svd.Factorize(ratings, mat.SVDThin) {
		return nil, errors.New("svd: factorization failed")
	}
	values := svd.Values(nil)
	k := components
	if k <= 0 || k > len(values) {
		k = len(values)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	rows, _ := u.Dims()
	cols, _ := v.Dims()

	users := mat.NewDense(rows, k, nil)
	for i := 0; i < rows; i++ {
		for l := 0; l < k; l++ {
			users.Set(i, l, u.At(i, l)*values[l])
		}
	}
	items := mat.DenseCopyOf(v.Slice(0, cols, 0, k))
	return &SVD{users: users, items: items}, nil
}

// Dims 返回用户数与书籍数。
func (s *SVD) Dims() (users, items int) {
	users, _ = s.users.Dims()
	items, _ = s.items.Dims()
	return users, items
}

// Scores 返回用户对每本书的原始预测值（未截断）。
func (s *SVD) Scores(user int) []float64 {
	n, _ := s.items.Dims()
	out := make([]float64, n)
	u := s.users.RowView(user)
	for j := 0; j < n; j++ {
		out[j] = mat.Dot(u, s.items.RowView(j))
	}
	return out
}

// PredictRating 返回截断到 [0, 5] 的预测评分。
func (s *SVD) PredictRating(user, item int) float64 {
	return ClipRating(mat.Dot(s.users.RowView(user), s.items.RowView(item)))
}

// ClipRating 把预测值截断到 [0, 5]。
func ClipRating(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 5:
		return 5
	default:
		return v
	}
}
