package blogservice

import (
	"github.com/sushihentaime/blogstack/internal/common"
)

const (
	maxDesLength = 200

	msgTitleRequired   = "You must provide a title"
	msgDesInvalid      = "Blog description should be of 200 chars only"
	msgBannerRequired  = "Banner required to publish the blog"
	msgContentRequired = "There must be some content to publish"
	msgTagsRequired    = "Provide tags to publish blog"
)

// validateBlog requires a title for every blog. Published blogs additionally need a
// description, a banner, some content and tags, checked in that order.
func validateBlog(v *common.Validator, req *CreateBlogRequest) {
	v.CheckFirst(req.Title != "", "title", msgTitleRequired)

	if req.Draft {
		return
	}

	v.CheckFirst(req.Des != "" && v.CheckStringLength(req.Des, 1, maxDesLength), "des", msgDesInvalid)
	v.CheckFirst(req.Banner != "", "banner", msgBannerRequired)
	v.CheckFirst(len(req.Content.Blocks) > 0, "content", msgContentRequired)
	v.CheckFirst(len(req.Tags) > 0, "tags", msgTagsRequired)
}

func validateAuthor(v *common.Validator, id int64) {
	v.Check(id > 0, "author", "must be greater than zero")
}
