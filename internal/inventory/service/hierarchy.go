package service

import (
	"sort"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
)

// childrenIndex 构建 parentID -> 子节点 的邻接表，根节点归入空串键。
// 树的遍历都基于这张表，避免逐节点线性扫描。
func childrenIndex(locs []entity.Location) map[string][]*entity.Location {
	index := make(map[string][]*entity.Location, len(locs))
	for i := range locs {
		key := ""
		if locs[i].ParentID != nil {
			key = *locs[i].ParentID
		}
		index[key] = append(index[key], &locs[i])
	}
	return index
}

// DescendantIDs 返回指定库位的全部子孙节点 ID（不含自身）。
// 环路检查和级联判断共用该函数。
func DescendantIDs(locationID string, locs []entity.Location) map[string]struct{} {
	index := childrenIndex(locs)
	result := make(map[string]struct{})
	stack := []string{locationID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range index[current] {
			if _, seen := result[child.ID]; seen {
				continue
			}
			result[child.ID] = struct{}{}
			stack = append(stack, child.ID)
		}
	}
	return result
}

// subtreeDepth 节点下最深子孙相对该节点的层数，无子节点时为 0
func subtreeDepth(locationID string, index map[string][]*entity.Location) int {
	maxDepth := 0
	for _, child := range index[locationID] {
		if d := subtreeDepth(child.ID, index) + 1; d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// BuildHierarchy 把库位平铺列表组装成森林。两趟遍历：
// 先建节点映射，再挂接子节点，子节点按编码排序保证结果与输入顺序无关。
func BuildHierarchy(locs []entity.Location) []*entity.LocationNode {
	nodes := make(map[string]*entity.LocationNode, len(locs))
	for i := range locs {
		nodes[locs[i].ID] = &entity.LocationNode{
			Location: locs[i],
			Children: []*entity.LocationNode{},
		}
	}
	var roots []*entity.LocationNode
	for _, node := range nodes {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// 父节点缺失属于数据异常，展示层仍将其提升为根以免整树丢失
			roots = append(roots, node)
		}
	}
	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	return roots
}

func sortNodes(nodes []*entity.LocationNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Code < nodes[j].Code })
}
